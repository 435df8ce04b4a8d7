package models

import (
	"time"

	"github.com/gocql/gocql"
)

// HeroImage est une image de bannière de la page d'accueil, stockée dans MinIO.
type HeroImage struct {
	ID        gocql.UUID        `json:"id"`
	ObjectKey string            `json:"object_key"`
	Titles    map[string]string `json:"titles"`
	Subtitles map[string]string `json:"subtitles"`
	LinkURL   string            `json:"link_url"`
	Position  int               `json:"position"`
	Active    bool              `json:"active"`
	CreatedAt time.Time         `json:"created_at"`
}

// HeroView est une image de bannière prête à afficher.
type HeroView struct {
	ID       string `json:"id"`
	ImageURL string `json:"image_url"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	LinkURL  string `json:"link_url"`
	Position int    `json:"position"`
}
