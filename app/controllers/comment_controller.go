package controllers

import (
	"net/http"

	"photoshare/app/services"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	commentService *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

type commentRequest struct {
	Text string `json:"text"`
}

// Index lists the comments of a post
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	comments, err := cc.commentService.ListPostComments(postID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, comments)
}

// Create adds a comment authored by the current user
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var body commentRequest
	if err := decodeJSON(r, &body); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	comment, err := cc.commentService.CreateComment(r.Context(), postID, currentUser(r), body.Text)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, comment)
}

// Update replaces a comment's text; author only
func (cc *CommentController) Update(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := commentPath(w, r)
	if !ok {
		return
	}

	var body commentRequest
	if err := decodeJSON(r, &body); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	comment, err := cc.commentService.UpdateComment(r.Context(), postID, commentID, currentUser(r), body.Text)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, comment)
}

// Delete removes a comment; author only
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := commentPath(w, r)
	if !ok {
		return
	}

	if err := cc.commentService.DeleteComment(r.Context(), postID, commentID, currentUser(r)); err != nil {
		sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func commentPath(w http.ResponseWriter, r *http.Request) (postID, commentID int, ok bool) {
	postID, err := pathID(r, "postId")
	if err != nil {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return 0, 0, false
	}
	commentID, err = pathID(r, "commentId")
	if err != nil {
		sendError(w, "Invalid comment ID", http.StatusBadRequest)
		return 0, 0, false
	}
	return postID, commentID, true
}
