package bookings

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/audit"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/db"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nameCaser = cases.Title(language.English)

type familyMemberRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Name      string  `json:"name"`
	DOB       string  `json:"dob"`
	ImageURL  *string `json:"image_url"`
	Address   *string `json:"address"`
	PHIN      *string `json:"phin"`
	MHSC      *string `json:"mhsc"`
	Notes     *string `json:"notes"`
}

// splitName handles clients that send a single "name" field instead of
// first/last. A one-word name fills both.
func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	first = parts[0]
	last = strings.Join(parts[1:], " ")
	if last == "" {
		last = first
	}
	return first, last
}

// GetFamilyMembers lists the user's active family members, newest first.
func GetFamilyMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var members []FamilyMember
	err := db.DB.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").Find(&members).Error
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, members)
}

// GetFamilyMember returns one active family member owned by the user.
func GetFamilyMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	memberID := chi.URLParam(r, "id")

	var member FamilyMember
	err := db.DB.First(&member, "member_id = ? AND user_id = ? AND is_active = ?", memberID, userID, true).Error
	if err != nil {
		http.Error(w, "Family member not found", http.StatusNotFound)
		return
	}

	writeJSON(w, member)
}

// CreateFamilyMember adds a patient profile under the user's account.
func CreateFamilyMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req familyMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	first, last := req.FirstName, req.LastName
	if req.Name != "" && first == "" && last == "" {
		first, last = splitName(req.Name)
	}
	if first == "" || last == "" || req.DOB == "" {
		http.Error(w, "Name and date of birth are required", http.StatusBadRequest)
		return
	}

	dob, err := time.Parse("2006-01-02", req.DOB)
	if err != nil {
		http.Error(w, "Invalid date of birth, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	member := FamilyMember{
		MemberID:  uuid.NewString(),
		UserID:    userID,
		FirstName: nameCaser.String(strings.TrimSpace(first)),
		LastName:  nameCaser.String(strings.TrimSpace(last)),
		DOB:       dob,
		IsActive:  true,
	}
	if req.ImageURL != nil {
		member.ImageURL = *req.ImageURL
	}
	if req.Address != nil {
		member.Address = *req.Address
	}
	if req.PHIN != nil {
		member.PHIN = *req.PHIN
	}
	if req.MHSC != nil {
		member.MHSC = *req.MHSC
	}
	if req.Notes != nil {
		member.Notes = *req.Notes
	}

	if err := db.DB.Create(&member).Error; err != nil {
		log.Println("Error creating family member:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	ip, ua := audit.RequestMeta(r)
	audit.Record(r.Context(), audit.Entry{
		Action:     audit.ActionFamilyMemberAdded,
		UserID:     userID,
		EntityType: "family_member",
		EntityID:   member.MemberID,
		Changes:    audit.Changes{"first_name": member.FirstName, "last_name": member.LastName},
		IPAddress:  ip,
		UserAgent:  ua,
	})

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, member)
}

// UpdateFamilyMember applies a partial update. Omitted fields keep
// their values; pointer fields distinguish "absent" from "clear".
func UpdateFamilyMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	memberID := chi.URLParam(r, "id")

	var member FamilyMember
	err := db.DB.First(&member, "member_id = ? AND user_id = ?", memberID, userID).Error
	if err != nil {
		http.Error(w, "Family member not found", http.StatusNotFound)
		return
	}

	var req familyMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	before := audit.Changes{"first_name": member.FirstName, "last_name": member.LastName}

	if req.Name != "" {
		first, last := splitName(req.Name)
		member.FirstName = nameCaser.String(first)
		member.LastName = nameCaser.String(last)
	}
	if req.FirstName != "" {
		member.FirstName = nameCaser.String(strings.TrimSpace(req.FirstName))
	}
	if req.LastName != "" {
		member.LastName = nameCaser.String(strings.TrimSpace(req.LastName))
	}
	if req.DOB != "" {
		dob, err := time.Parse("2006-01-02", req.DOB)
		if err != nil {
			http.Error(w, "Invalid date of birth, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		member.DOB = dob
	}
	if req.ImageURL != nil {
		member.ImageURL = *req.ImageURL
	}
	if req.Address != nil {
		member.Address = *req.Address
	}
	if req.PHIN != nil {
		member.PHIN = *req.PHIN
	}
	if req.MHSC != nil {
		member.MHSC = *req.MHSC
	}
	if req.Notes != nil {
		member.Notes = *req.Notes
	}

	if err := db.DB.Save(&member).Error; err != nil {
		log.Println("Error updating family member:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	ip, ua := audit.RequestMeta(r)
	audit.Record(r.Context(), audit.Entry{
		Action:     audit.ActionFamilyMemberUpdated,
		UserID:     userID,
		EntityType: "family_member",
		EntityID:   member.MemberID,
		Changes: audit.Changes{
			"old": before,
			"new": audit.Changes{"first_name": member.FirstName, "last_name": member.LastName},
		},
		IPAddress: ip,
		UserAgent: ua,
	})

	writeJSON(w, member)
}

// DeleteFamilyMember soft-deletes: the row stays for booking snapshots.
func DeleteFamilyMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	memberID := chi.URLParam(r, "id")

	var member FamilyMember
	err := db.DB.First(&member, "member_id = ? AND user_id = ?", memberID, userID).Error
	if err != nil {
		http.Error(w, "Family member not found", http.StatusNotFound)
		return
	}

	member.IsActive = false
	if err := db.DB.Save(&member).Error; err != nil {
		log.Println("Error deleting family member:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	ip, ua := audit.RequestMeta(r)
	audit.Record(r.Context(), audit.Entry{
		Action:     audit.ActionFamilyMemberDeleted,
		UserID:     userID,
		EntityType: "family_member",
		EntityID:   member.MemberID,
		Changes:    audit.Changes{"deleted": true},
		IPAddress:  ip,
		UserAgent:  ua,
	})

	writeJSON(w, map[string]string{"message": "Family member deleted successfully"})
}
