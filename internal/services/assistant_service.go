package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/GodwinAdu/med-pro-sub001/internal/assistant"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
)

// Assistant is the language model gateway, set once at startup.
var Assistant *assistant.Client

var featurePrompts = map[string]string{
	FeatureChat:         "You are a medical assistant for licensed clinicians. Answer concisely and cite standard references where relevant.",
	FeatureDrugLookup:   "You are a drug information assistant. Given a drug name, summarize indications, dosing, contraindications and major interactions.",
	FeaturePrescription: "You are a prescription drafting assistant. Produce a structured prescription draft for clinician review. Never present output as final medical advice.",
	FeatureDiagnosis:    "You are a differential diagnosis assistant. Given symptoms and history, list ranked differentials with supporting and opposing findings.",
	FeatureCarePlan:     "You are a care plan assistant. Produce a structured nursing care plan with goals, interventions and evaluation criteria.",
}

// AssistantResult carries either a completed reply or the gate's denial.
// Exactly one of Reply and Denied is set.
type AssistantResult struct {
	Reply  *assistant.Completion
	Entry  *models.LedgerEntry
	Denied *Decision
}

// RunAssistantFeature runs one gated assistant operation: check access,
// perform the completion, then commit the charge or quota increment. The
// commit happens only after the provider call succeeds, so a failed
// completion never costs the account anything. A commit failure after a
// successful completion is logged and the reply is still returned; the
// account got the work.
func RunAssistantFeature(ctx context.Context, accountID uint, feature string, messages []assistant.Message) (*AssistantResult, error) {
	decision, err := CheckAccess(accountID, feature)
	if err != nil {
		return nil, err
	}
	if !decision.Granted {
		return &AssistantResult{Denied: decision}, nil
	}

	reply, err := Assistant.Complete(ctx, featurePrompts[feature], messages)
	if err != nil {
		return nil, err
	}

	entry, err := CommitUsage(accountID, feature)
	if err != nil {
		zap.L().Error("usage commit failed after completed assistant call",
			zap.Uint("account_id", accountID),
			zap.String("feature", feature),
			zap.Error(err))
	}

	return &AssistantResult{Reply: reply, Entry: entry}, nil
}
