package user

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gopkg.in/gomail.v2"

	"github.com/gorilla/mux"
	"github.com/kvejborg/regatta-server/cmd/models"
	"github.com/kvejborg/regatta-server/cmd/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Handler struct {
    db           *gorm.DB
    profileCache *utils.TTLCache
}

func NewHandler(db *gorm.DB) *Handler {
    return &Handler{
        db:           db,
        profileCache: utils.NewTTLCache(utils.DefaultCacheTTL),
    }
}

// RegisterRoutes sets up all user-related routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/register", h.HandleRegister).Methods("POST")
    router.HandleFunc("/login", h.handleLogin).Methods("POST")
    router.HandleFunc("/refresh", h.handleRefreshToken).Methods("POST")
    router.HandleFunc("/reset-password", h.handlePasswordResetRequest).Methods("POST")
    router.HandleFunc("/reset-password/confirm", h.handlePasswordReset).Methods("POST")
    router.HandleFunc("/users", h.GetUsers).Methods("GET")
    router.HandleFunc("/users/{id:[0-9]+}", h.GetUser).Methods("GET")
    router.HandleFunc("/users/{id:[0-9]+}", utils.AuthMiddleware(h.UpdateUser)).Methods("PUT")
    router.HandleFunc("/profiles/{username}", h.GetProfile).Methods("GET")
}

type registerRequest struct {
    FullName   string `json:"full_name" validate:"required"`
    Username   string `json:"username" validate:"required,min=3,max=60"`
    Email      string `json:"email" validate:"required,email"`
    Password   string `json:"password" validate:"required,min=8"`
    Role       string `json:"role" validate:"omitempty,oneof=member organizer admin"`
    Bio        string `json:"bio"`
    SailNumber string `json:"sail_number"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
    var req registerRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    if err := utils.ValidateStruct(req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, err.Error())
        return
    }
    if req.Role == "" {
        req.Role = "member"
    }

    var existing models.User
    if err := h.db.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error; err == nil {
        utils.WriteError(w, utils.ErrConflict, "Email or username already in use")
        return
    }

    hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
    if err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error hashing password")
        return
    }

    user := models.User{
        FullName:     req.FullName,
        Username:     req.Username,
        Email:        req.Email,
        PasswordHash: string(hash),
        Role:         req.Role,
        Bio:          req.Bio,
        SailNumber:   req.SailNumber,
    }
    if err := h.db.Create(&user).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error creating user")
        return
    }

    utils.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
    var loginRequest struct {
        Email    string `json:"email"`
        Password string `json:"password"`
    }
    if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }

    var user models.User
    if err := h.db.Where("email = ?", loginRequest.Email).First(&user).Error; err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Invalid credentials")
        return
    }

    if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(loginRequest.Password)); err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Invalid credentials")
        return
    }

    accessToken, err := generateJWT(user.ID, 15)
    if err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error generating access token")
        return
    }

    refreshToken, err := generateRefreshToken(user.ID)
    if err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error generating refresh token")
        return
    }

    if err := saveRefreshToken(h.db, user.ID, refreshToken); err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error saving refresh token")
        return
    }

    utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
        "message":       "Login successful",
        "access_token":  accessToken,
        "refresh_token": refreshToken,
        "user_id":       user.ID,
        "username":      user.Username,
        "role":          user.Role,
    })
}

func (h *Handler) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
    var refreshRequest struct {
        RefreshToken string `json:"refresh_token"`
    }
    if err := json.NewDecoder(r.Body).Decode(&refreshRequest); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request")
        return
    }

    tx := h.db.Begin()

    var user models.User
    if err := tx.Where("refresh_token = ?", refreshRequest.RefreshToken).First(&user).Error; err != nil {
        tx.Rollback()
        utils.WriteError(w, utils.ErrUnauthorized, "Invalid refresh token")
        return
    }

    if user.RefreshExpiredAt.Before(time.Now()) {
        tx.Rollback()
        utils.WriteError(w, utils.ErrUnauthorized, "Refresh token expired")
        return
    }

    newAccessToken, err := generateJWT(user.ID, 15)
    if err != nil {
        tx.Rollback()
        utils.WriteError(w, utils.ErrInternal, "Error generating new token")
        return
    }

    // Rotate the refresh token
    newRefreshToken, err := generateRefreshToken(user.ID)
    if err != nil {
        tx.Rollback()
        utils.WriteError(w, utils.ErrInternal, "Error generating refresh token")
        return
    }

    if err := tx.Model(&user).Updates(map[string]interface{}{
        "refresh_token":            newRefreshToken,
        "refresh_token_expired_at": time.Now().Add(30 * 24 * time.Hour),
    }).Error; err != nil {
        tx.Rollback()
        utils.WriteError(w, utils.ErrInternal, "Error updating refresh token")
        return
    }

    if err := tx.Commit().Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Internal server error")
        return
    }

    utils.WriteJSON(w, http.StatusOK, map[string]string{
        "access_token":  newAccessToken,
        "refresh_token": newRefreshToken,
    })
}

func (h *Handler) handlePasswordResetRequest(w http.ResponseWriter, r *http.Request) {
    var resetRequest struct {
        Email string `json:"email"`
    }
    if err := json.NewDecoder(r.Body).Decode(&resetRequest); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    if resetRequest.Email == "" {
        utils.WriteError(w, utils.ErrInvalidInput, "Email is required")
        return
    }

    // Keep the response vague whether or not the account exists.
    vague := map[string]string{
        "message": "If an account exists, a reset code will be sent to your email",
    }

    var user models.User
    if err := h.db.Where("email = ?", resetRequest.Email).First(&user).Error; err != nil {
        utils.WriteJSON(w, http.StatusOK, vague)
        return
    }

    code, err := randomDigits(6)
    if err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error processing reset request")
        return
    }

    tx := h.db.Begin()
    if err := tx.Where("user_id = ?", user.ID).Delete(&models.PasswordResetToken{}).Error; err != nil {
        tx.Rollback()
        utils.WriteError(w, utils.ErrInternal, "Error processing reset request")
        return
    }
    resetToken := models.PasswordResetToken{
        UserID:    user.ID,
        Token:     code,
        ExpiresAt: time.Now().Add(15 * time.Minute),
    }
    if err := tx.Create(&resetToken).Error; err != nil {
        tx.Rollback()
        utils.WriteError(w, utils.ErrInternal, "Error processing reset request")
        return
    }
    if err := tx.Commit().Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error processing reset request")
        return
    }

    if err := sendPasswordResetEmail(user.Email, code); err != nil {
        log.Printf("Error sending reset email to %s: %v", user.Email, err)
    }

    utils.WriteJSON(w, http.StatusOK, vague)
}

func (h *Handler) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
    var req struct {
        Email       string `json:"email"`
        Token       string `json:"token"`
        NewPassword string `json:"new_password"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    if req.Token == "" || len(req.NewPassword) < 8 {
        utils.WriteError(w, utils.ErrInvalidInput, "Token and a password of at least 8 characters are required")
        return
    }

    var user models.User
    if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
        utils.WriteError(w, utils.ErrNotFound, "User not found")
        return
    }

    var resetToken models.PasswordResetToken
    if err := h.db.Where("user_id = ? AND token = ?", user.ID, req.Token).First(&resetToken).Error; err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Invalid or expired reset token")
        return
    }
    if time.Now().After(resetToken.ExpiresAt) {
        utils.WriteError(w, utils.ErrUnauthorized, "Invalid or expired reset token")
        return
    }

    hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
    if err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error hashing password")
        return
    }

    tx := h.db.Begin()
    if err := tx.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
        tx.Rollback()
        utils.WriteError(w, utils.ErrInternal, "Error updating password")
        return
    }
    if err := tx.Where("user_id = ?", user.ID).Delete(&models.PasswordResetToken{}).Error; err != nil {
        tx.Rollback()
        utils.WriteError(w, utils.ErrInternal, "Error clearing reset token")
        return
    }
    if err := tx.Commit().Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Internal server error")
        return
    }

    utils.WriteJSON(w, http.StatusOK, map[string]string{
        "message": "Password reset successfully",
    })
}

// sendPasswordResetEmail sends the 6-digit reset code
func sendPasswordResetEmail(email, code string) error {
    smtpHost := os.Getenv("SMTP_HOST")
    smtpPort := os.Getenv("SMTP_PORT")
    smtpUser := os.Getenv("SMTP_USER")
    smtpPass := os.Getenv("SMTP_PASS")

    m := gomail.NewMessage()
    m.SetHeader("From", smtpUser)
    m.SetHeader("To", email)
    m.SetHeader("Subject", "Password Reset Code")
    m.SetBody("text/plain", fmt.Sprintf("Your password reset code is: %s. Ignore this email if you did not request a reset.", code))

    port, err := strconv.Atoi(smtpPort)
    if err != nil {
        return fmt.Errorf("invalid SMTP port: %v", err)
    }
    d := gomail.NewDialer(smtpHost, port, smtpUser, smtpPass)

    return d.DialAndSend(m)
}

// GetUsers retrieves all users
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
    var users []models.User
    if err := h.db.Find(&users).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving users")
        return
    }
    utils.WriteJSON(w, http.StatusOK, users)
}

// GetUser retrieves a specific user by ID
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    userID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid user ID")
        return
    }

    var user models.User
    if err := h.db.First(&user, userID).Error; err != nil {
        utils.WriteError(w, utils.ErrNotFound, "User not found")
        return
    }

    utils.WriteJSON(w, http.StatusOK, user)
}

// UpdateUser updates the caller's own profile and clears the cached copy.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
    callerID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    vars := mux.Vars(r)
    userID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid user ID")
        return
    }
    if uint(userID) != callerID {
        utils.WriteError(w, utils.ErrForbidden, "You may only update your own profile")
        return
    }

    var updateData struct {
        FullName           string `json:"full_name"`
        Bio                string `json:"bio"`
        SailNumber         string `json:"sail_number"`
        ProfilePicturePath string `json:"profile_picture_path"`
    }
    if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid JSON input")
        return
    }

    var user models.User
    if err := h.db.First(&user, userID).Error; err != nil {
        utils.WriteError(w, utils.ErrNotFound, "User not found")
        return
    }

    if updateData.FullName != "" {
        user.FullName = updateData.FullName
    }
    if updateData.Bio != "" {
        user.Bio = updateData.Bio
    }
    if updateData.SailNumber != "" {
        user.SailNumber = updateData.SailNumber
    }
    if updateData.ProfilePicturePath != "" {
        user.ProfilePicturePath = updateData.ProfilePicturePath
    }

    if err := h.db.Save(&user).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error updating user")
        return
    }

    h.profileCache.Clear(user.Username)

    utils.WriteJSON(w, http.StatusOK, user)
}

// GetProfile serves the public link page for a username. Reads go through a
// five-minute cache; concurrent misses may both fetch.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    username := vars["username"]

    if cached, ok := h.profileCache.Get(username); ok {
        utils.WriteJSON(w, http.StatusOK, cached)
        return
    }

    var user models.User
    err := utils.Retry(3, 200*time.Millisecond, func() error {
        result := h.db.Where("username = ?", username).
            Preload("Links", func(db *gorm.DB) *gorm.DB {
                return db.Order("position ASC")
            }).
            First(&user)
        if errors.Is(result.Error, gorm.ErrRecordNotFound) {
            // Not a transient failure, stop retrying by reporting success
            // and checking below.
            return nil
        }
        return result.Error
    })
    if err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving profile")
        return
    }
    if user.ID == 0 {
        utils.WriteError(w, utils.ErrNotFound, "Profile not found")
        return
    }

    profile := map[string]interface{}{
        "username":             user.Username,
        "full_name":            user.FullName,
        "bio":                  user.Bio,
        "sail_number":          user.SailNumber,
        "profile_picture_path": user.ProfilePicturePath,
        "links":                user.Links,
    }
    h.profileCache.Set(username, profile)

    utils.WriteJSON(w, http.StatusOK, profile)
}

var jwtSecretKey = []byte(os.Getenv("SECRET_KEY"))

func generateJWT(userID uint, expirationMinutes int) (string, error) {
    claims := &jwt.RegisteredClaims{
        Subject:   fmt.Sprint(userID),
        ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute * time.Duration(expirationMinutes))),
    }
    token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return token.SignedString(jwtSecretKey)
}

func generateRefreshToken(userID uint) (string, error) {
    b := make([]byte, 32)
    if _, err := rand.Read(b); err != nil {
        return "", err
    }

    // HMAC ties the token to the user
    mac := hmac.New(sha256.New, []byte(os.Getenv("SECRET_KEY")))
    mac.Write([]byte(fmt.Sprintf("%d", userID)))
    mac.Write(b)

    signature := mac.Sum(nil)
    return fmt.Sprintf("%d_%x_%x", userID, b, signature), nil
}

func saveRefreshToken(db *gorm.DB, userID uint, refreshToken string) error {
    expirationTime := time.Now().Add(30 * 24 * time.Hour)
    return db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
        "refresh_token":            refreshToken,
        "refresh_token_expired_at": expirationTime,
    }).Error
}

func randomDigits(n int) (string, error) {
    max := big.NewInt(1)
    for i := 0; i < n; i++ {
        max.Mul(max, big.NewInt(10))
    }
    v, err := rand.Int(rand.Reader, max)
    if err != nil {
        return "", err
    }
    return fmt.Sprintf("%0*d", n, v), nil
}
