package bot

import (
	"github.com/judhveer/easternpanorama-office-taskbot/internal/models"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/store"
)

// misDepartment is the department whose approved members review
// registrations and department changes.
const misDepartment = "MIS"

// Access holds the role configuration and answers the authorization
// predicates every workflow entry point must check.
type Access struct {
	bossChannel string
	eaChannels  map[string]bool
	doers       *store.Doers
}

// NewAccess creates an Access checker.
func NewAccess(bossChannel string, eaChannels []string, doers *store.Doers) *Access {
	ea := make(map[string]bool, len(eaChannels))
	for _, ch := range eaChannels {
		ea[ch] = true
	}
	return &Access{bossChannel: bossChannel, eaChannels: ea, doers: doers}
}

// IsBoss reports whether the channel belongs to the principal.
func (a *Access) IsBoss(channel string) bool {
	return channel != "" && channel == a.bossChannel
}

// IsEA reports whether the channel is a configured EA channel.
func (a *Access) IsEA(channel string) bool {
	return a.eaChannels[channel]
}

// IsReviewer reports whether the channel may approve or reject exception
// requests: the boss, a configured EA, or an approved MIS-department doer.
func (a *Access) IsReviewer(channel string) bool {
	if a.IsBoss(channel) || a.IsEA(channel) {
		return true
	}
	doer, err := a.doers.FindByChannel(channel)
	if err != nil {
		return false
	}
	return doer.Department == misDepartment && IsApprovedDoer(doer)
}

// IsApprovedDoer reports whether a doer may receive tasks. ApprovalStatus
// is authoritative; a stale IsApproved flag is never consulted.
func IsApprovedDoer(doer *models.Doer) bool {
	return doer != nil && doer.IsActive && doer.ApprovalStatus == models.ApprovalApproved
}
