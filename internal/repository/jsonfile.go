package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"mira/internal/model"
)

// Catalog file names inside the data directory
const (
	BasicsFile          = "property_basics.json"
	CharacteristicsFile = "property_characteristics.json"
	ImagesFile          = "property_images.json"
)

// DefaultImageURL is used for listings without an image record
const DefaultImageURL = "https://images.pexels.com/photos/106399/pexels-photo-106399.jpeg"

type basicsRecord struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Location    string  `json:"location"`
}

type characteristicsRecord struct {
	ID        int64    `json:"id"`
	Bedrooms  int      `json:"bedrooms"`
	Bathrooms int      `json:"bathrooms"`
	SizeSqft  float64  `json:"size_sqft"`
	Amenities []string `json:"amenities"`
}

type imageRecord struct {
	ID       int64  `json:"id"`
	ImageURL string `json:"image_url"`
}

// JSONFileSource reads the three catalog files from a directory and merges them by id
type JSONFileSource struct {
	dir string
}

// NewJSONFileSource creates a source reading from dir
func NewJSONFileSource(dir string) *JSONFileSource {
	return &JSONFileSource{dir: dir}
}

// Name implements Source
func (s *JSONFileSource) Name() string { return "json:" + s.dir }

// Load implements Source. Basics define the listing set and its order;
// characteristics and images are optional per listing.
func (s *JSONFileSource) Load(ctx context.Context) ([]model.Listing, error) {
	var basics []basicsRecord
	if err := s.readFile(BasicsFile, &basics); err != nil {
		return nil, err
	}
	var characteristics []characteristicsRecord
	if err := s.readFile(CharacteristicsFile, &characteristics); err != nil {
		return nil, err
	}
	var images []imageRecord
	if err := s.readFile(ImagesFile, &images); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	charByID := make(map[int64]characteristicsRecord, len(characteristics))
	for _, c := range characteristics {
		charByID[c.ID] = c
	}
	imageByID := make(map[int64]string, len(images))
	for _, img := range images {
		imageByID[img.ID] = img.ImageURL
	}

	listings := make([]model.Listing, 0, len(basics))
	for _, b := range basics {
		listing := model.Listing{
			ID:          b.ID,
			Title:       b.Title,
			Description: b.Description,
			Price:       b.Price,
			Location:    b.Location,
			Amenities:   model.JSONArray{},
			ImageURL:    DefaultImageURL,
		}
		if c, ok := charByID[b.ID]; ok {
			listing.Bedrooms = c.Bedrooms
			listing.Bathrooms = c.Bathrooms
			listing.SizeSqft = c.SizeSqft
			if c.Amenities != nil {
				listing.Amenities = model.JSONArray(c.Amenities)
			}
		}
		if url := imageByID[b.ID]; url != "" {
			listing.ImageURL = url
		}
		listings = append(listings, listing)
	}

	return listings, nil
}

func (s *JSONFileSource) readFile(name string, target any) error {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
