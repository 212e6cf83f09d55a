package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMService sends push notifications via Firebase Cloud Messaging.
type FCMService struct {
	client *messaging.Client
}

// NewFCMService creates an FCM service. Returns nil if Firebase is not configured.
func NewFCMService(serviceAccountPath string) *FCMService {
	if serviceAccountPath == "" {
		return nil
	}
	ctx := context.Background()
	opt := option.WithCredentialsFile(serviceAccountPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		log.Printf("[FCM] Failed to init Firebase app: %v", err)
		return nil
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("[FCM] Failed to get Messaging client: %v", err)
		return nil
	}
	return &FCMService{client: client}
}

// SendToUser sends a push to a user by their FCM token. Token is fetched by the
// caller. All data values are converted to strings (FCM requires string values).
func (s *FCMService) SendToUser(ctx context.Context, fcmToken string, notifType, title, body string, data map[string]interface{}) error {
	if s == nil || fcmToken == "" {
		return nil
	}
	dataStr := make(map[string]string)
	dataStr["type"] = notifType
	for k, v := range data {
		switch val := v.(type) {
		case string:
			dataStr[k] = val
		case fmt.Stringer:
			dataStr[k] = val.String()
		default:
			b, _ := json.Marshal(val)
			dataStr[k] = string(b)
		}
	}
	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:  dataStr,
		Token: fcmToken,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		log.Printf("[FCM] Send error: %v", err)
		return err
	}
	return nil
}
