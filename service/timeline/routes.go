package timeline

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/kvejborg/regatta-server/cmd/models"
	"github.com/kvejborg/regatta-server/cmd/utils"
	notification "github.com/kvejborg/regatta-server/service/notifications"
	"github.com/kvejborg/regatta-server/service/ws"
	"gorm.io/gorm"
)

type Handler struct {
    db       *gorm.DB
    hub      *ws.Hub
    notifier *notification.Notifier
}

func NewHandler(db *gorm.DB, hub *ws.Hub, notifier *notification.Notifier) *Handler {
    return &Handler{db: db, hub: hub, notifier: notifier}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
    // The slug route must register before the {eventId} route so public
    // lookups are not swallowed by the numeric matcher.
    router.HandleFunc("/timeline/event/{slug}", h.GetPublicTimeline).Methods("GET")

    router.HandleFunc("/timeline/{eventId}", h.GetTimeline).Methods("GET")
    router.HandleFunc("/timeline/{eventId}", utils.AuthMiddleware(h.CreatePost)).Methods("POST")
    router.HandleFunc("/timeline/{eventId}/settings", h.GetSettings).Methods("GET")
    router.HandleFunc("/timeline/{eventId}/settings", utils.AuthMiddleware(h.UpdateSettings)).Methods("PUT")
    router.HandleFunc("/timeline/{eventId}/access", utils.AuthMiddleware(h.ListAccess)).Methods("GET")
    router.HandleFunc("/timeline/{eventId}/access", utils.AuthMiddleware(h.GrantAccess)).Methods("POST")
    router.HandleFunc("/timeline/{eventId}/posts/{postId}", utils.AuthMiddleware(h.ModeratePost)).Methods("PUT")

    router.HandleFunc("/timeline/{eventId}/posts/{postId}/likes", h.GetLikes).Methods("GET")
    router.HandleFunc("/timeline/{eventId}/posts/{postId}/likes", utils.AuthMiddleware(h.LikePost)).Methods("POST")
    router.HandleFunc("/timeline/{eventId}/posts/{postId}/likes", utils.AuthMiddleware(h.UnlikePost)).Methods("DELETE")
    router.HandleFunc("/timeline/{eventId}/posts/{postId}/comments", h.GetComments).Methods("GET")
    router.HandleFunc("/timeline/{eventId}/posts/{postId}/comments", utils.AuthMiddleware(h.AddComment)).Methods("POST")
}

// AuthorInfo is the display subset of a user attached to posts and comments.
type AuthorInfo struct {
    ID       uint   `json:"id"`
    Username string `json:"username"`
    FullName string `json:"full_name"`
    Role     string `json:"role"`
}

// PostResponse is the wire form of a timeline post. CreatedAt is normalized
// to RFC 3339 in UTC.
type PostResponse struct {
    ID         uint        `json:"id"`
    TimelineID uint        `json:"timeline_id"`
    AuthorID   uint        `json:"author_id"`
    Content    string      `json:"content"`
    MediaURL   string      `json:"media_url,omitempty"`
    MediaType  string      `json:"media_type,omitempty"`
    IsApproved bool        `json:"is_approved"`
    CreatedAt  string      `json:"created_at"`
    Author     *AuthorInfo `json:"author,omitempty"`
}

func newPostResponse(post models.TimelinePost) PostResponse {
    resp := PostResponse{
        ID:         post.ID,
        TimelineID: post.TimelineID,
        AuthorID:   post.AuthorID,
        Content:    post.Content,
        MediaURL:   post.MediaURL,
        MediaType:  post.MediaType,
        IsApproved: post.IsApproved,
        CreatedAt:  post.CreatedAt.UTC().Format(time.RFC3339),
    }
    if post.Author != nil {
        resp.Author = &AuthorInfo{
            ID:       post.Author.ID,
            Username: post.Author.Username,
            FullName: post.Author.FullName,
            Role:     post.Author.Role,
        }
    }
    return resp
}

func newPostResponses(posts []models.TimelinePost) []PostResponse {
    responses := make([]PostResponse, 0, len(posts))
    for _, post := range posts {
        responses = append(responses, newPostResponse(post))
    }
    return responses
}

// loadEvent resolves the eventId path variable.
func (h *Handler) loadEvent(w http.ResponseWriter, r *http.Request) (*models.Event, bool) {
    vars := mux.Vars(r)
    eventID, err := strconv.ParseUint(vars["eventId"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid event ID")
        return nil, false
    }

    var event models.Event
    if err := h.db.First(&event, eventID).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            utils.WriteError(w, utils.ErrNotFound, "Event not found")
        } else {
            utils.WriteError(w, utils.ErrInternal, "Error retrieving event")
        }
        return nil, false
    }
    return &event, true
}

// loadTimeline returns the event's timeline row, or nil when none exists.
// Reads never create the row.
func (h *Handler) loadTimeline(eventID uint) (*models.Timeline, error) {
    var tl models.Timeline
    if err := h.db.Where("event_id = ?", eventID).First(&tl).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return nil, nil
        }
        return nil, err
    }
    return &tl, nil
}

func (h *Handler) loadVisiblePosts(w http.ResponseWriter, tl *models.Timeline, viewerID *uint, ownerID uint) ([]models.TimelinePost, bool) {
    if tl == nil {
        return nil, true
    }
    var posts []models.TimelinePost
    if err := h.db.Where("timeline_id = ?", tl.ID).
        Preload("Author").
        Order("created_at DESC").
        Find(&posts).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving posts")
        return nil, false
    }
    return VisiblePosts(posts, viewerID, ownerID), true
}

// GetTimeline returns the effective settings plus the posts visible to the
// caller. Works for dashboards: no active-check here, only the public slug
// path enforces one.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }

    tl, err := h.loadTimeline(event.ID)
    if err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving timeline")
        return
    }

    viewerID := utils.IdentityFromRequest(r)
    visible, ok := h.loadVisiblePosts(w, tl, viewerID, event.OrganizerID)
    if !ok {
        return
    }

    utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
        "event_id": event.ID,
        "settings": SettingsFromModel(tl),
        "posts":    newPostResponses(visible),
    })
}

// GetPublicTimeline is the anonymous lookup by slug. An inactive timeline is
// forbidden for every caller before any post data is considered.
func (h *Handler) GetPublicTimeline(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    slug := vars["slug"]

    var event models.Event
    if err := h.db.Where("slug = ?", slug).First(&event).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            utils.WriteError(w, utils.ErrNotFound, "Event not found")
        } else {
            utils.WriteError(w, utils.ErrInternal, "Error retrieving event")
        }
        return
    }

    tl, err := h.loadTimeline(event.ID)
    if err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving timeline")
        return
    }

    settings := SettingsFromModel(tl)
    if !settings.IsActive {
        utils.WriteError(w, utils.ErrForbidden, "Timeline is not active")
        return
    }

    // Owner detection widens the post set on the public path too.
    viewerID := utils.IdentityFromRequest(r)
    visible, ok := h.loadVisiblePosts(w, tl, viewerID, event.OrganizerID)
    if !ok {
        return
    }

    utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
        "event_id": event.ID,
        "slug":     event.Slug,
        "title":    event.Title,
        "settings": settings,
        "posts":    newPostResponses(visible),
    })
}

// CreatePost runs the admission checks in order and creates the post with
// its approval state decided by the auto-approve rule.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
    authorID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }

    tl, err := h.loadTimeline(event.ID)
    if err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving timeline")
        return
    }

    if admErr := CheckAdmission(tl); admErr != nil {
        utils.WriteError(w, admErr.Kind, admErr.Message)
        return
    }

    content, mediaURL, mediaType, ok := h.readPostBody(w, r)
    if !ok {
        return
    }
    if strings.TrimSpace(content) == "" {
        utils.WriteError(w, utils.ErrInvalidInput, "Content is required")
        return
    }

    post := models.TimelinePost{
        TimelineID: tl.ID,
        AuthorID:   authorID,
        Content:    content,
        MediaURL:   mediaURL,
        MediaType:  mediaType,
        IsApproved: AutoApprove(tl.RequireApproval, authorID, event.OrganizerID),
    }

    if err := h.db.Create(&post).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error creating post")
        return
    }

    // Best effort: a failed reload keeps the created post without its author.
    var loaded models.TimelinePost
    if err := h.db.Preload("Author").First(&loaded, post.ID).Error; err == nil {
        post = loaded
    }
    resp := newPostResponse(post)

    if post.IsApproved {
        h.hub.BroadcastPost(tl.ID, map[string]interface{}{"type": "post", "post": resp})
    } else if event.OrganizerID != authorID {
        h.notifier.Push(event.OrganizerID, "New post awaiting review",
            "A participant posted to your event timeline.",
            map[string]interface{}{"event_id": event.ID, "post_id": post.ID})
    }

    utils.WriteJSON(w, http.StatusCreated, resp)
}

// readPostBody accepts either a JSON body or a multipart form with an
// optional media file.
func (h *Handler) readPostBody(w http.ResponseWriter, r *http.Request) (content, mediaURL, mediaType string, ok bool) {
    if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
        if err := r.ParseMultipartForm(utils.MaxMediaSize); err != nil {
            utils.WriteError(w, utils.ErrInvalidInput, "Error parsing form")
            return "", "", "", false
        }
        content = r.FormValue("content")

        file, header, err := r.FormFile("media")
        if err == nil {
            defer file.Close()
            mediaURL, mediaType, err = utils.SaveMedia(file, header)
            if err != nil {
                utils.WriteError(w, utils.ErrInvalidInput, err.Error())
                return "", "", "", false
            }
        }
        return content, mediaURL, mediaType, true
    }

    var body struct {
        Content   string `json:"content"`
        MediaURL  string `json:"media_url"`
        MediaType string `json:"media_type"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return "", "", "", false
    }
    return body.Content, body.MediaURL, body.MediaType, true
}

// GetSettings returns the effective settings, synthesizing the defaults when
// no timeline row exists.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }

    tl, err := h.loadTimeline(event.ID)
    if err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving timeline")
        return
    }

    utils.WriteJSON(w, http.StatusOK, SettingsFromModel(tl))
}

// UpdateSettings is owner-only. Fields omitted from the request reset to
// their defaults, not to the previously stored values.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
    callerID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }
    if event.OrganizerID != callerID {
        utils.WriteError(w, utils.ErrForbidden, "Only the event organizer may change timeline settings")
        return
    }

    var patch SettingsPatch
    if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }

    merged := MergeSettings(DefaultSettings(), patch)

    tl, err := h.loadTimeline(event.ID)
    if err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving timeline")
        return
    }
    if tl == nil {
        tl = &models.Timeline{EventID: event.ID}
    }
    tl.IsActive = merged.IsActive
    tl.RequireApproval = merged.RequireApproval
    tl.AllowPublicViewing = merged.AllowPublicViewing
    tl.AllowParticipantPosting = merged.AllowParticipantPosting

    if err := h.db.Save(tl).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error saving timeline settings")
        return
    }

    utils.WriteJSON(w, http.StatusOK, merged)
}

// ModeratePost applies an approve/reject transition. The caller's identity
// is compared to the event's organizer before any other check. Reject sets
// the approved flag false; there is no state distinguishing an explicitly
// rejected post from one never reviewed.
func (h *Handler) ModeratePost(w http.ResponseWriter, r *http.Request) {
    callerID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }
    if event.OrganizerID != callerID {
        utils.WriteError(w, utils.ErrForbidden, "Only the event organizer may moderate posts")
        return
    }

    var body struct {
        Action string `json:"action"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    if body.Action != "approve" && body.Action != "reject" {
        utils.WriteError(w, utils.ErrInvalidInput, "Action must be \"approve\" or \"reject\"")
        return
    }

    post, ok := h.loadPostForEvent(w, r, event)
    if !ok {
        return
    }

    post.IsApproved = body.Action == "approve"
    if err := h.db.Model(post).Update("is_approved", post.IsApproved).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error updating post")
        return
    }

    var loaded models.TimelinePost
    if err := h.db.Preload("Author").First(&loaded, post.ID).Error; err == nil {
        *post = loaded
    }
    resp := newPostResponse(*post)

    if post.IsApproved {
        h.hub.BroadcastPost(post.TimelineID, map[string]interface{}{"type": "post", "post": resp})
        h.notifier.Push(post.AuthorID, "Post approved",
            "Your timeline post has been approved.",
            map[string]interface{}{"event_id": event.ID, "post_id": post.ID})
    }

    utils.WriteJSON(w, http.StatusOK, resp)
}

// loadPostForEvent resolves the postId path variable and checks the post
// belongs to the event's timeline.
func (h *Handler) loadPostForEvent(w http.ResponseWriter, r *http.Request, event *models.Event) (*models.TimelinePost, bool) {
    vars := mux.Vars(r)
    postID, err := strconv.ParseUint(vars["postId"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid post ID")
        return nil, false
    }

    var post models.TimelinePost
    if err := h.db.First(&post, postID).Error; err != nil {
        utils.WriteError(w, utils.ErrNotFound, "Post not found")
        return nil, false
    }

    tl, err := h.loadTimeline(event.ID)
    if err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving timeline")
        return nil, false
    }
    if tl == nil || post.TimelineID != tl.ID {
        utils.WriteError(w, utils.ErrNotFound, "Post not found")
        return nil, false
    }
    return &post, true
}

// LikePost adds the caller's like. A second like for the same post is a
// conflict, not a silent no-op.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }
    post, ok := h.loadPostForEvent(w, r, event)
    if !ok {
        return
    }

    var existingLike models.TimelineLike
    if err := h.db.Where("user_id = ? AND post_id = ?", userID, post.ID).First(&existingLike).Error; err == nil {
        utils.WriteError(w, utils.ErrConflict, "Post already liked")
        return
    }

    like := models.TimelineLike{
        UserID: userID,
        PostID: post.ID,
    }
    // The unique index backs up the pre-check under concurrent adds.
    if outcome := likeOutcome(h.db.Create(&like).Error); outcome != nil {
        utils.WriteError(w, outcome.Kind, outcome.Message)
        return
    }

    var count int64
    h.db.Model(&models.TimelineLike{}).Where("post_id = ?", post.ID).Count(&count)

    utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
        "message":     "Post liked successfully",
        "likes_count": count,
    })
}

// UnlikePost removes the caller's like; removing a like that does not exist
// reports not-found and never touches the derived counter.
func (h *Handler) UnlikePost(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }
    post, ok := h.loadPostForEvent(w, r, event)
    if !ok {
        return
    }

    result := h.db.Where("user_id = ? AND post_id = ?", userID, post.ID).Delete(&models.TimelineLike{})
    if outcome := unlikeOutcome(result.RowsAffected, result.Error); outcome != nil {
        utils.WriteError(w, outcome.Kind, outcome.Message)
        return
    }

    var count int64
    h.db.Model(&models.TimelineLike{}).Where("post_id = ?", post.ID).Count(&count)

    utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
        "message":     "Post unliked successfully",
        "likes_count": count,
    })
}

// GetLikes returns the derived like count plus whether the caller has liked
// the post. Anonymous callers get the count with has_liked=false.
func (h *Handler) GetLikes(w http.ResponseWriter, r *http.Request) {
    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }
    post, ok := h.loadPostForEvent(w, r, event)
    if !ok {
        return
    }

    var count int64
    if err := h.db.Model(&models.TimelineLike{}).Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error counting likes")
        return
    }

    hasLiked := false
    if viewerID := utils.IdentityFromRequest(r); viewerID != nil {
        var like models.TimelineLike
        if err := h.db.Where("user_id = ? AND post_id = ?", *viewerID, post.ID).First(&like).Error; err == nil {
            hasLiked = true
        }
    }

    utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
        "likes_count": count,
        "has_liked":   hasLiked,
    })
}

// AddComment appends a comment. Comments carry no moderation state.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }
    post, ok := h.loadPostForEvent(w, r, event)
    if !ok {
        return
    }

    var body struct {
        Content string `json:"content"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    if strings.TrimSpace(body.Content) == "" {
        utils.WriteError(w, utils.ErrInvalidInput, "Content is required")
        return
    }

    comment := models.TimelineComment{
        PostID:   post.ID,
        AuthorID: userID,
        Content:  body.Content,
    }
    if err := h.db.Create(&comment).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error creating comment")
        return
    }

    var loaded models.TimelineComment
    if err := h.db.Preload("Author").First(&loaded, comment.ID).Error; err == nil {
        comment = loaded
    }
    utils.WriteJSON(w, http.StatusCreated, comment)
}

// GetComments lists comments with pagination. Comments are listed regardless
// of the parent post's approval state.
func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }
    post, ok := h.loadPostForEvent(w, r, event)
    if !ok {
        return
    }

    page, _ := strconv.Atoi(r.URL.Query().Get("page"))
    if page < 1 {
        page = 1
    }
    pageSize := 10

    var comments []models.TimelineComment
    var total int64

    query := h.db.Model(&models.TimelineComment{}).Where("post_id = ?", post.ID).Preload("Author")
    query.Count(&total)

    if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Order("created_at DESC").Find(&comments).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving comments")
        return
    }

    utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
        "comments":    comments,
        "total":       total,
        "page":        page,
        "page_size":   pageSize,
        "total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
    })
}

// GrantAccess gives a user a named role on the event's timeline. Granting is
// owner-only and upserts the timeline row with defaults when none exists.
func (h *Handler) GrantAccess(w http.ResponseWriter, r *http.Request) {
    callerID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }
    if event.OrganizerID != callerID {
        utils.WriteError(w, utils.ErrForbidden, "Only the event organizer may grant timeline access")
        return
    }

    var body struct {
        UserID uint   `json:"user_id"`
        Role   string `json:"role"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    if body.UserID == 0 {
        utils.WriteError(w, utils.ErrInvalidInput, "user_id is required")
        return
    }
    switch body.Role {
    case "":
        body.Role = "viewer"
    case "viewer", "poster", "admin":
    default:
        utils.WriteError(w, utils.ErrInvalidInput, "Role must be viewer, poster or admin")
        return
    }

    var user models.User
    if err := h.db.First(&user, body.UserID).Error; err != nil {
        utils.WriteError(w, utils.ErrNotFound, "User not found")
        return
    }

    tl, err := h.loadTimeline(event.ID)
    if err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving timeline")
        return
    }
    if tl == nil {
        defaults := DefaultSettings()
        tl = &models.Timeline{
            EventID:                 event.ID,
            IsActive:                defaults.IsActive,
            RequireApproval:         defaults.RequireApproval,
            AllowPublicViewing:      defaults.AllowPublicViewing,
            AllowParticipantPosting: defaults.AllowParticipantPosting,
        }
        if err := h.db.Create(tl).Error; err != nil {
            utils.WriteError(w, utils.ErrInternal, "Error creating timeline")
            return
        }
    }

    var access models.TimelineAccess
    result := h.db.Where("timeline_id = ? AND user_id = ?", tl.ID, body.UserID).First(&access)
    if result.Error == nil {
        access.Role = body.Role
        if err := h.db.Save(&access).Error; err != nil {
            utils.WriteError(w, utils.ErrInternal, "Error updating access")
            return
        }
    } else {
        access = models.TimelineAccess{
            TimelineID: tl.ID,
            UserID:     body.UserID,
            Role:       body.Role,
        }
        if err := h.db.Create(&access).Error; err != nil {
            utils.WriteError(w, utils.ErrInternal, "Error granting access")
            return
        }
    }

    utils.WriteJSON(w, http.StatusCreated, access)
}

// ListAccess lists the timeline's access grants, owner-only.
func (h *Handler) ListAccess(w http.ResponseWriter, r *http.Request) {
    callerID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    event, ok := h.loadEvent(w, r)
    if !ok {
        return
    }
    if event.OrganizerID != callerID {
        utils.WriteError(w, utils.ErrForbidden, "Only the event organizer may list timeline access")
        return
    }

    tl, err := h.loadTimeline(event.ID)
    if err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving timeline")
        return
    }
    if tl == nil {
        utils.WriteJSON(w, http.StatusOK, []models.TimelineAccess{})
        return
    }

    var grants []models.TimelineAccess
    if err := h.db.Where("timeline_id = ?", tl.ID).Preload("User").Find(&grants).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving access grants")
        return
    }

    utils.WriteJSON(w, http.StatusOK, grants)
}
