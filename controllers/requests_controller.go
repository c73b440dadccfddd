package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	models "github.com/ZisanUlHaque/RedHope-Server/models"
	utils "github.com/ZisanUlHaque/RedHope-Server/utils"
)

// ---------------- CREATE ----------------
func CreateDonationRequest(svc RequestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)

		var input models.DonationRequestInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// --- Requester defaults to the caller; donors may only post for themselves ---
		input.RequesterEmail = strings.TrimSpace(input.RequesterEmail)
		if input.RequesterEmail == "" {
			input.RequesterEmail = actor.Email
		}
		if actor.Role == models.RoleDonor && input.RequesterEmail != actor.Email {
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot create a request for another requester"})
			return
		}

		id, err := svc.Create(c.Request.Context(), input.Request())
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"insertedId": id.Hex()})
	}
}

// ---------------- LIST ----------------
func ListDonationRequests(svc RequestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.RequestFilter{
			RequesterEmail: c.Query("email"),
			Status:         c.Query("status"),
			BloodGroup:     c.Query("bloodGroup"),
			District:       c.Query("district"),
			Upazila:        c.Query("upazila"),
		}

		requests, err := svc.List(c.Request.Context(), actorFrom(c), filter)
		if err != nil {
			respondError(c, err)
			return
		}

		if len(requests) == 0 {
			c.JSON(http.StatusOK, []models.DonationRequest{})
			return
		}

		// --- ETag from the most recently updated request ---
		latest := requests[0]
		for _, r := range requests {
			if r.UpdatedAt.After(latest.UpdatedAt) {
				latest = r
			}
		}

		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt, strconv.Itoa(len(requests)), c.Request.URL.RawQuery)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, requests)
	}
}

// ---------------- GET ----------------
func GetDonationRequest(svc RequestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		etag := utils.GenerateETag(r.ID, r.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", r.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, r)
	}
}

// ---------------- UPDATE ----------------
func UpdateDonationRequest(svc RequestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch models.RequestPatch
		if err := bindStrict(c, &patch); err != nil {
			respondError(c, err)
			return
		}

		res, err := svc.Update(c.Request.Context(), actorFrom(c), c.Param("id"), patch)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, res)
	}
}

// ---------------- DELETE ----------------
func DeleteDonationRequest(svc RequestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.Delete(c.Request.Context(), actorFrom(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, res)
	}
}
