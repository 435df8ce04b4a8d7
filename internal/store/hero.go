package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/gocql/gocql"

	"storefront_back_end/internal/models"
)

const heroColumns = `hero_id, object_key, titles, subtitles, link_url, position, active, created_at`

// HeroRepository stocke les métadonnées des images de bannière.
type HeroRepository struct {
	session *gocql.Session
}

func NewHeroRepository(session *gocql.Session) *HeroRepository {
	return &HeroRepository{session: session}
}

// ListHeroImages retourne toutes les bannières triées par position.
func (r *HeroRepository) ListHeroImages(ctx context.Context) ([]models.HeroImage, error) {
	iter := r.session.Query(`SELECT ` + heroColumns + ` FROM hero_images`).WithContext(ctx).Iter()

	var images []models.HeroImage
	var h models.HeroImage
	for iter.Scan(&h.ID, &h.ObjectKey, &h.Titles, &h.Subtitles, &h.LinkURL, &h.Position, &h.Active, &h.CreatedAt) {
		images = append(images, h)
		h = models.HeroImage{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture bannières: %w", err)
	}

	SortHeroImages(images)
	return images, nil
}

// SortHeroImages trie par position puis par date de création.
func SortHeroImages(images []models.HeroImage) {
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].Position != images[j].Position {
			return images[i].Position < images[j].Position
		}
		return images[i].CreatedAt.Before(images[j].CreatedAt)
	})
}

func (r *HeroRepository) GetHeroImage(ctx context.Context, id string) (models.HeroImage, error) {
	uid, err := gocql.ParseUUID(id)
	if err != nil {
		return models.HeroImage{}, ErrNotFound
	}
	var h models.HeroImage
	err = r.session.Query(`SELECT `+heroColumns+` FROM hero_images WHERE hero_id = ?`, uid).WithContext(ctx).
		Scan(&h.ID, &h.ObjectKey, &h.Titles, &h.Subtitles, &h.LinkURL, &h.Position, &h.Active, &h.CreatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.HeroImage{}, ErrNotFound
	}
	return h, err
}

func (r *HeroRepository) SaveHeroImage(ctx context.Context, h models.HeroImage) error {
	return r.session.Query(`INSERT INTO hero_images (`+heroColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.ObjectKey, h.Titles, h.Subtitles, h.LinkURL, h.Position, h.Active, h.CreatedAt).
		WithContext(ctx).Exec()
}

func (r *HeroRepository) DeleteHeroImage(ctx context.Context, id string) error {
	uid, err := gocql.ParseUUID(id)
	if err != nil {
		return ErrNotFound
	}
	return r.session.Query(`DELETE FROM hero_images WHERE hero_id = ?`, uid).WithContext(ctx).Exec()
}
