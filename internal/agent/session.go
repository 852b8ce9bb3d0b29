package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewSessionID generates a unique session ID for agent conversations.
// Format: sess_YYYY_MM_DDTHH_MM_SSZ_<8 hex chars>.
func NewSessionID() string {
	ts := time.Now().UTC().Format("2006_01_02T15_04_05Z")
	unique := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("sess_%s_%s", ts, unique)
}
