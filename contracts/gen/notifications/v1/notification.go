package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the canonical, versioned notification envelope handed to the
// delivery runtime. This package is generated-contract-only and must stay
// backward compatible.
type Envelope struct {
	NotificationID string          `json:"notification_id"`
	Template       string          `json:"template"`
	Recipients     []string        `json:"recipients"`
	SourceService  string          `json:"source_service"`
	OccurredAt     time.Time       `json:"occurred_at"`
	SchemaVersion  int             `json:"schema_version"`
	Data           json.RawMessage `json:"data"`
}
