package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/leycura/curabot/internal/api"
	"github.com/leycura/curabot/internal/domain"
	"github.com/leycura/curabot/internal/mailer"
)

type Mailer interface {
	SendContactEmail(ctx context.Context, msg mailer.ContactMessage) error
	UpsertContact(ctx context.Context, contact mailer.Contact) error
}

// FormsHandler backs the public site forms. The mailer may be nil when no
// email provider key is configured; submissions then fail with a config
// error instead of silently dropping mail.
type FormsHandler struct {
	mailer           Mailer
	newsletterListID int64
	sumateListID     int64
}

type FormsConfig struct {
	NewsletterListID int64
	SumateListID     int64
}

func NewFormsHandler(m Mailer, cfg FormsConfig) *FormsHandler {
	return &FormsHandler{
		mailer:           m,
		newsletterListID: cfg.NewsletterListID,
		sumateListID:     cfg.SumateListID,
	}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

type ContactFormRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

type NewsletterRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type SumateRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	LastName  string `json:"lastName,omitempty"`
	Province  string `json:"province,omitempty"`
	City      string `json:"city,omitempty"`
	DNI       string `json:"dni,omitempty"`
	Telephone string `json:"telephone,omitempty"`
}

type FormResponse struct {
	Success bool `json:"success"`
}

// Contact forwards a contact-form message to the team inbox.
func (h *FormsHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req ContactFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !validEmail(req.Email) {
		api.HandleError(w, domain.ErrInvalidEmail)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		api.HandleError(w, domain.ErrEmptyMessage)
		return
	}

	if h.mailer == nil {
		api.HandleError(w, domain.ErrMailerNotConfigured)
		return
	}

	err := h.mailer.SendContactEmail(r.Context(), mailer.ContactMessage{
		Name:       strings.TrimSpace(req.Name),
		ReplyEmail: strings.TrimSpace(req.Email),
		Subject:    strings.TrimSpace(req.Subject),
		Body:       strings.TrimSpace(req.Message),
	})
	if err != nil {
		api.HandleError(w, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "email provider request failed", err))
		return
	}

	api.JSON(w, http.StatusOK, FormResponse{Success: true})
}

// Newsletter subscribes an email to the newsletter list.
func (h *FormsHandler) Newsletter(w http.ResponseWriter, r *http.Request) {
	var req NewsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !validEmail(req.Email) {
		api.HandleError(w, domain.ErrInvalidEmail)
		return
	}

	if h.mailer == nil {
		api.HandleError(w, domain.ErrMailerNotConfigured)
		return
	}

	attributes := map[string]string{"ORIGEN": "newsletter"}
	if name := strings.TrimSpace(req.Name); name != "" {
		attributes["NOMBRE"] = name
	}

	contact := mailer.Contact{
		Email:      strings.TrimSpace(req.Email),
		Attributes: attributes,
	}
	if h.newsletterListID > 0 {
		contact.ListIDs = []int64{h.newsletterListID}
	}

	if err := h.mailer.UpsertContact(r.Context(), contact); err != nil {
		api.HandleError(w, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "email provider request failed", err))
		return
	}

	api.JSON(w, http.StatusOK, FormResponse{Success: true})
}

// Sumate registers a volunteer with their full attribute set.
func (h *FormsHandler) Sumate(w http.ResponseWriter, r *http.Request) {
	var req SumateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !validEmail(req.Email) {
		api.HandleError(w, domain.ErrInvalidEmail)
		return
	}

	if h.mailer == nil {
		api.HandleError(w, domain.ErrMailerNotConfigured)
		return
	}

	attributes := map[string]string{"ORIGEN": "sumate"}
	setIfPresent := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			attributes[key] = value
		}
	}
	setIfPresent("NOMBRE", req.Name)
	setIfPresent("APELLIDO", req.LastName)
	setIfPresent("PROVINCIA", req.Province)
	setIfPresent("CIUDAD", req.City)
	setIfPresent("DNI", req.DNI)
	setIfPresent("TELEFONO", req.Telephone)

	contact := mailer.Contact{
		Email:      strings.TrimSpace(req.Email),
		Attributes: attributes,
	}
	if h.sumateListID > 0 {
		contact.ListIDs = []int64{h.sumateListID}
	}

	if err := h.mailer.UpsertContact(r.Context(), contact); err != nil {
		api.HandleError(w, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "email provider request failed", err))
		return
	}

	api.JSON(w, http.StatusOK, FormResponse{Success: true})
}
