package repository

import (
	"errors"
	"time"

	"sokoni/internal/models"

	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// GetOrCreateConversation returns the thread for (listing, buyer), creating it
// on first contact.
func (r *ChatRepository) GetOrCreateConversation(listingID, buyerID, sellerID uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.Where("listing_id = ? AND buyer_id = ?", listingID, buyerID).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	conv = models.Conversation{ListingID: listingID, BuyerID: buyerID, SellerID: sellerID}
	if err := r.db.Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ChatRepository) GetConversation(id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.Preload("Listing").First(&conv, id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ChatRepository) ListConversations(userID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Preload("Listing").Preload("Buyer").Preload("Seller").
		Order("last_message_at DESC").
		Find(&convs).Error
	return convs, err
}

func (r *ChatRepository) CreateMessage(m *models.Message) error {
	if err := r.db.Create(m).Error; err != nil {
		return err
	}
	now := time.Now()
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", m.ConversationID).
		Update("last_message_at", &now).Error
}

func (r *ChatRepository) ListMessages(conversationID uint, page, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

func (r *ChatRepository) MarkRead(conversationID, readerID uint) error {
	now := time.Now()
	return r.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Update("read_at", &now).Error
}
