package service

import (
	"context"
	"encoding/json"

	"sokoni/internal/models"
	"sokoni/internal/repository"
)

type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	fcm      *FCMService
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, fcm *FCMService) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, fcm: fcm}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	if s == nil {
		return nil
	}
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.repo.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
	if err != nil {
		return err
	}
	// Push via FCM
	s.sendPush(userID, notifType, title, body, data)
	return nil
}

func (s *NotificationService) sendPush(userID uint, notifType, title, body string, data map[string]interface{}) {
	if s.fcm == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil || u == nil || u.FCMToken == "" {
		return
	}
	_ = s.fcm.SendToUser(context.Background(), u.FCMToken, notifType, title, body, data)
}

func (s *NotificationService) NotifyPaymentConfirmed(userID uint, amountCents int64, reference string) error {
	return s.Notify(userID, "PAYMENT_CONFIRMED", "Payment confirmed", "Your payment was received. Your listing is in review.", map[string]interface{}{"amount_cents": amountCents, "reference": reference})
}

func (s *NotificationService) NotifyListingApproved(ownerID uint, listingID uint, title string) error {
	return s.Notify(ownerID, "LISTING_APPROVED", "Listing live", "\""+title+"\" is now live on Sokoni", map[string]interface{}{"listing_id": listingID})
}

func (s *NotificationService) NotifyListingRejected(ownerID uint, listingID uint, title, reason string) error {
	body := "\"" + title + "\" was not approved"
	if reason != "" {
		body += ": " + reason
	}
	return s.Notify(ownerID, "LISTING_REJECTED", "Listing rejected", body, map[string]interface{}{"listing_id": listingID})
}

func (s *NotificationService) NotifyListingExpired(ownerID uint, listingID uint, title string) error {
	return s.Notify(ownerID, "LISTING_EXPIRED", "Listing expired", "\""+title+"\" has expired. Renew it to go live again.", map[string]interface{}{"listing_id": listingID})
}

func (s *NotificationService) NotifyNewMessage(recipientID uint, senderName string, conversationID uint) error {
	return s.Notify(recipientID, "NEW_MESSAGE", "New message", senderName+" sent you a message", map[string]interface{}{"conversation_id": conversationID})
}

func (s *NotificationService) NotifyReportResolved(reporterID uint, listingID uint) error {
	return s.Notify(reporterID, "REPORT_RESOLVED", "Report resolved", "Thanks for your report. Our team has reviewed it.", map[string]interface{}{"listing_id": listingID})
}
