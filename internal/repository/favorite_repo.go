package repository

import (
	"sokoni/internal/models"

	"gorm.io/gorm"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) Add(userID, listingID uint) error {
	fav := models.Favorite{UserID: userID, ListingID: listingID}
	return r.db.FirstOrCreate(&fav, models.Favorite{UserID: userID, ListingID: listingID}).Error
}

func (r *FavoriteRepository) Remove(userID, listingID uint) error {
	return r.db.Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&models.Favorite{}).Error
}

func (r *FavoriteRepository) List(userID uint) ([]models.Favorite, error) {
	var favs []models.Favorite
	err := r.db.Where("user_id = ?", userID).
		Preload("Listing").Preload("Listing.Images").
		Order("created_at DESC").
		Find(&favs).Error
	return favs, err
}
