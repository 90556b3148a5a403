package scryfall

// ImageURIs holds the image renditions Scryfall publishes for a card or face.
type ImageURIs struct {
	Small  string `json:"small"`
	Normal string `json:"normal"`
	Large  string `json:"large"`
	PNG    string `json:"png"`
}

// BestURL returns the preferred rendition: large, then png, then normal,
// then small. Empty when no rendition is present.
func (u ImageURIs) BestURL() string {
	for _, s := range []string{u.Large, u.PNG, u.Normal, u.Small} {
		if s != "" {
			return s
		}
	}
	return ""
}

// CardFace is one printed face of a multi-face card.
type CardFace struct {
	Name        string     `json:"name"`
	PrintedName string     `json:"printed_name"`
	FlavorName  string     `json:"flavor_name"`
	TypeLine    string     `json:"type_line"`
	ImageURIs   *ImageURIs `json:"image_uris"`
}

// Card is one Scryfall printing of a card.
type Card struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	PrintedName     string     `json:"printed_name"`
	FlavorName      string     `json:"flavor_name"`
	Layout          string     `json:"layout"`
	Set             string     `json:"set"`
	SetName         string     `json:"set_name"`
	SetType         string     `json:"set_type"`
	CollectorNumber string     `json:"collector_number"`
	ReleasedAt      string     `json:"released_at"`
	ImageURIs       *ImageURIs `json:"image_uris"`
	CardFaces       []CardFace `json:"card_faces"`
	Promo           bool       `json:"promo"`
	FullArt         bool       `json:"full_art"`
}

// Set is one entry of the Scryfall /sets listing.
type Set struct {
	Code        string `json:"code"`
	MTGOCode    string `json:"mtgo_code"`
	ArenaCode   string `json:"arena_code"`
	Name        string `json:"name"`
	SetType     string `json:"set_type"`
	ReleasedAt  string `json:"released_at"`
	CardCount   int    `json:"card_count"`
	PrintedSize int    `json:"printed_size"`
}

type searchResponse struct {
	Data     []Card `json:"data"`
	HasMore  bool   `json:"has_more"`
	NextPage string `json:"next_page"`
}

type setsResponse struct {
	Data []Set `json:"data"`
}
