package models

import "strings"

type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
)

var platforms = []Platform{PlatformTikTok, PlatformInstagram, PlatformYouTube}

func Platforms() []Platform { return append([]Platform(nil), platforms...) }

func (p Platform) Valid() bool {
	switch p {
	case PlatformTikTok, PlatformInstagram, PlatformYouTube:
		return true
	}
	return false
}

func ParsePlatform(s string) (Platform, error) {
	p := Platform(norm(s))
	if !p.Valid() {
		return "", &UnsupportedPlatformError{Platform: s}
	}
	return p, nil
}

type Niche string

const (
	NicheGaming        Niche = "gaming"
	NicheBeauty        Niche = "beauty"
	NicheFashion       Niche = "fashion"
	NicheFitness       Niche = "fitness"
	NicheFood          Niche = "food"
	NicheTravel        Niche = "travel"
	NicheTech          Niche = "tech"
	NicheFinance       Niche = "finance"
	NicheEducation     Niche = "education"
	NicheEntertainment Niche = "entertainment"
	NicheComedy        Niche = "comedy"
	NicheMusic         Niche = "music"
	NicheDance         Niche = "dance"
	NicheLifestyle     Niche = "lifestyle"
	NicheParenting     Niche = "parenting"
	NichePets          Niche = "pets"
	NicheSports        Niche = "sports"
	NicheDIY           Niche = "diy"
	NicheAutomotive    Niche = "automotive"
	NicheBusiness      Niche = "business"
	NicheHealth        Niche = "health"
	NicheArt           Niche = "art"
	NicheNews          Niche = "news"
	NicheOther         Niche = "other"
)

var niches = []Niche{
	NicheGaming, NicheBeauty, NicheFashion, NicheFitness, NicheFood, NicheTravel,
	NicheTech, NicheFinance, NicheEducation, NicheEntertainment, NicheComedy, NicheMusic,
	NicheDance, NicheLifestyle, NicheParenting, NichePets, NicheSports, NicheDIY,
	NicheAutomotive, NicheBusiness, NicheHealth, NicheArt, NicheNews, NicheOther,
}

func Niches() []Niche { return append([]Niche(nil), niches...) }

func (n Niche) Valid() bool {
	for _, v := range niches {
		if v == n {
			return true
		}
	}
	return false
}

type Location string

const (
	LocationUS          Location = "us"
	LocationUK          Location = "uk"
	LocationCanada      Location = "ca"
	LocationAustralia   Location = "au"
	LocationGermany     Location = "de"
	LocationFrance      Location = "fr"
	LocationJapan       Location = "jp"
	LocationKorea       Location = "kr"
	LocationNetherlands Location = "nl"
	LocationSweden      Location = "se"
	LocationSwitzerland Location = "ch"
	LocationNorway      Location = "no"
	LocationSpain       Location = "es"
	LocationItaly       Location = "it"
	LocationBrazil      Location = "br"
	LocationMexico      Location = "mx"
	LocationIndia       Location = "in"
	LocationIndonesia   Location = "id"
	LocationPhilippines Location = "ph"
	LocationOther       Location = "other"
)

var locations = []Location{
	LocationUS, LocationUK, LocationCanada, LocationAustralia, LocationGermany,
	LocationFrance, LocationJapan, LocationKorea, LocationNetherlands, LocationSweden,
	LocationSwitzerland, LocationNorway, LocationSpain, LocationItaly, LocationBrazil,
	LocationMexico, LocationIndia, LocationIndonesia, LocationPhilippines, LocationOther,
}

func Locations() []Location { return append([]Location(nil), locations...) }

func (l Location) Valid() bool {
	for _, v := range locations {
		if v == l {
			return true
		}
	}
	return false
}

type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
