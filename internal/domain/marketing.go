package domain

// CampaignID identifies one of the built-in marketing campaigns.
type CampaignID string

const (
	CampaignBirthdays CampaignID = "birthdays"
	CampaignInactive  CampaignID = "inactive"
	CampaignFlash     CampaignID = "flash"
)

// InactiveAfterDays is how long without a visit makes a client inactive.
const InactiveAfterDays = 30

// Campaign is a message aimed at a computed group of clients.
type Campaign struct {
	ID          CampaignID       `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Message     string           `json:"message"`
	Targets     []CampaignTarget `json:"targets"`
}

// CampaignTarget is a client the campaign applies to.
type CampaignTarget struct {
	ClientID     string `json:"clientId"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	WhatsAppLink string `json:"whatsAppLink"`
}

// CampaignSendResult reports a bulk send through the WhatsApp sender.
type CampaignSendResult struct {
	CampaignID CampaignID   `json:"campaignId"`
	Sent       int          `json:"sent"`
	Failed     int          `json:"failed"`
	Results    []SendResult `json:"results"`
}

// SendResult is the outcome for one target.
type SendResult struct {
	ClientID  string `json:"clientId"`
	Phone     string `json:"phone"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// WhatsAppLinkRequest is the body for POST /v1/whatsapp-link.
type WhatsAppLinkRequest struct {
	Phone   string `json:"phone" validate:"required"`
	Message string `json:"message"`
}

// WhatsAppLinkResponse is the response for POST /v1/whatsapp-link.
type WhatsAppLinkResponse struct {
	URL string `json:"url"`
}
