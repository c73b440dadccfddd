package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	models "github.com/ZisanUlHaque/RedHope-Server/models"
)

// ---------------- REGISTER ----------------
func RegisterUser(svc UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name       string `json:"name"`
			Email      string `json:"email" binding:"required,email"`
			Avatar     string `json:"avatar"`
			BloodGroup string `json:"bloodGroup"`
			District   string `json:"district"`
			Upazila    string `json:"upazila"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, created, err := svc.Register(c.Request.Context(), &models.User{
			Name:       input.Name,
			Email:      input.Email,
			Avatar:     input.Avatar,
			BloodGroup: input.BloodGroup,
			District:   input.District,
			Upazila:    input.Upazila,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, user)
	}
}

// ---------------- LIST ----------------
func ListUsers(svc UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.List(c.Request.Context(), models.UserFilter{
			Status:     c.Query("status"),
			Role:       c.Query("role"),
			BloodGroup: c.Query("bloodGroup"),
			District:   c.Query("district"),
			Upazila:    c.Query("upazila"),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		if users == nil {
			users = []models.User{}
		}

		c.JSON(http.StatusOK, users)
	}
}

// ---------------- PROFILE ----------------
func GetProfile(svc UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.Profile(c.Request.Context(), c.Param("email"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

func UpdateProfile(svc UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Param("email")
		if actor := actorFrom(c); !actor.IsAdmin() && actor.Email != email {
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot update another user's profile"})
			return
		}

		var patch models.ProfilePatch
		if err := bindStrict(c, &patch); err != nil {
			respondError(c, err)
			return
		}

		res, err := svc.UpdateProfile(c.Request.Context(), email, patch)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, res)
	}
}

// ---------------- ROLE / STATUS ----------------
// GetRole shares the /users/:id path segment with the admin setters, but the
// lookup is keyed by email.
func GetRole(svc UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := svc.Role(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"role": role})
	}
}

func SetUserRole(svc UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Role models.Role `json:"role" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := svc.SetRole(c.Request.Context(), c.Param("id"), input.Role)
		if err != nil {
			respondError(c, err)
			return
		}

		slog.Info("user role changed", "id", c.Param("id"), "role", input.Role, "by", actorFrom(c).Email)
		c.JSON(http.StatusOK, res)
	}
}

func SetUserStatus(svc UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Status models.UserStatus `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := svc.SetStatus(c.Request.Context(), c.Param("id"), input.Status)
		if err != nil {
			respondError(c, err)
			return
		}

		slog.Info("user status changed", "id", c.Param("id"), "status", input.Status, "by", actorFrom(c).Email)
		c.JSON(http.StatusOK, res)
	}
}

// ---------------- AVATAR ----------------
// UploadAvatar stores the "avatar" form file and points the caller's profile
// at it. A replaced avatar from the same folder is removed afterwards.
func UploadAvatar(svc UserService, images ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if images == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads are not configured"})
			return
		}
		email := actorFrom(c).Email

		fileHeader, err := c.FormFile("avatar")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
			return
		}
		defer file.Close()

		user, err := svc.Profile(c.Request.Context(), email)
		if err != nil {
			respondError(c, err)
			return
		}

		url, err := images.Upload(c.Request.Context(), file)
		if err != nil {
			slog.Error("avatar upload failed", "email", email, "file", fileHeader.Filename, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
			return
		}

		if _, err := svc.UpdateProfile(c.Request.Context(), email, models.ProfilePatch{Avatar: &url}); err != nil {
			respondError(c, err)
			return
		}

		if old := user.Avatar; old != "" && old != url && images.Owns(old) {
			go removeImage(images, old)
		}

		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}

func removeImage(images ImageStore, url string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := images.Delete(ctx, url); err != nil {
		slog.Warn("old avatar not removed", "url", url, "error", err)
	}
}
