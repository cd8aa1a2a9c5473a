package notification

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/kvejborg/regatta-server/cmd/models"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"gorm.io/gorm"
)

// Notifier pushes to a user's registered devices and records the outcome.
// Other services call it best-effort: delivery failures are logged, never
// surfaced to the triggering request.
type Notifier struct {
    db         *gorm.DB
    expoClient *expo.PushClient
}

func NewNotifier(db *gorm.DB) *Notifier {
    return &Notifier{
        db:         db,
        expoClient: expo.NewPushClient(nil),
    }
}

// Push sends title/body to every device of userID. Safe on a nil notifier.
func (n *Notifier) Push(userID uint, title, body string, data map[string]interface{}) {
    if n == nil {
        return
    }

    var devices []models.Device
    if err := n.db.Where("user_id = ?", userID).Find(&devices).Error; err != nil {
        log.Printf("error loading devices for user %d: %v", userID, err)
        return
    }
    if len(devices) == 0 {
        return
    }

    tokens := make([]string, 0, len(devices))
    for _, device := range devices {
        tokens = append(tokens, device.Token)
    }

    success, err := sendExpoNotification(n.db, n.expoClient, tokens, title, body, data)
    status := "sent"
    if !success || err != nil {
        status = "failed"
        log.Printf("error pushing notification to user %d: %v", userID, err)
    }

    dataJSON, _ := json.Marshal(data)
    history := models.NotificationHistory{
        UserID: userID,
        Title:  title,
        Body:   body,
        Data:   string(dataJSON),
        Status: status,
        SentAt: time.Now(),
    }
    if dbErr := n.db.Create(&history).Error; dbErr != nil {
        log.Printf("Error creating notification history: %v", dbErr)
    }
}

// sendExpoNotification sends push notifications using the Expo SDK.
func sendExpoNotification(db *gorm.DB, client *expo.PushClient, tokenStrings []string, title, body string, data map[string]interface{}) (bool, error) {
    var validTokens []expo.ExponentPushToken
    var invalidTokens []string

    for _, tokenString := range tokenStrings {
        pushToken, err := expo.NewExponentPushToken(tokenString)
        if err != nil {
            log.Printf("Invalid push token format %s: %v", tokenString, err)
            invalidTokens = append(invalidTokens, tokenString)
            continue
        }
        validTokens = append(validTokens, pushToken)
    }

    if len(validTokens) == 0 {
        return false, fmt.Errorf("no valid push tokens found")
    }

    var stringData map[string]string
    if data != nil {
        stringData = make(map[string]string)
        for key, value := range data {
            stringData[key] = fmt.Sprintf("%v", value)
        }
    }

    pushMessage := &expo.PushMessage{
        To:       validTokens,
        Body:     body,
        Title:    title,
        Sound:    "default",
        Priority: expo.DefaultPriority,
        Data:     stringData,
    }

    response, err := client.Publish(pushMessage)
    if err != nil {
        return false, fmt.Errorf("failed to publish notification: %v", err)
    }

    if validationErr := response.ValidateResponse(); validationErr != nil {
        log.Printf("Push notification validation error: %v", validationErr)
        cleanupInvalidTokens(db, invalidTokens)
        return false, fmt.Errorf("notification validation failed: %v", validationErr)
    }

    if len(invalidTokens) > 0 {
        cleanupInvalidTokens(db, invalidTokens)
    }

    return true, nil
}

func cleanupInvalidTokens(db *gorm.DB, tokens []string) {
    for _, token := range tokens {
        if err := db.Where("token = ?", token).Delete(&models.Device{}).Error; err != nil {
            log.Printf("Error cleaning up invalid token %s: %v", token, err)
        }
    }
}
