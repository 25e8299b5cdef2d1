// Package router implements the semantic routing pipeline that compiles a
// free-text message into structured action plans:
//
//	raw text → extract actions → classify intent → resolve context → plan actions
//
// The pipeline is deterministic keyword/regex machinery with no model calls.
// It is the fallback behind the orchestrator's direct phrase patterns and
// also powers the `opsclaw route --trace` view.
package router

import (
	"time"
)

// ActionType identifies one of the four recognized action families.
type ActionType string

const (
	ActionScheduleEvent  ActionType = "SCHEDULE_EVENT"
	ActionTriggerAlert   ActionType = "TRIGGER_ALERT"
	ActionCreateTicket   ActionType = "CREATE_TICKET"
	ActionCreateReminder ActionType = "CREATE_REMINDER"
)

// Intent is the overall disposition of a message. Only IntentCommand
// triggers execution.
type Intent string

const (
	IntentCommand     Intent = "COMMAND"
	IntentInformation Intent = "INFORMATION"
	IntentDiscussion  Intent = "DISCUSSION"
	IntentSuggestion  Intent = "SUGGESTION"
)

// ConfidenceThreshold is reported in every governance decision. It does not
// gate execution: ShouldExecute depends on intent alone.
const ConfidenceThreshold = 0.85

// ExtractedAction is one action family detected in a message.
type ExtractedAction struct {
	Type            ActionType `json:"type"`
	MatchedKeywords []string   `json:"matched_keywords"`
	Description     string     `json:"description"`
	RawText         string     `json:"raw_text"`
}

// Scores holds the raw signal counts behind a classification.
type Scores struct {
	Command    int `json:"command"`
	Question   int `json:"question"`
	Discussion int `json:"discussion"`
}

// Classification is the intent verdict for a message.
type Classification struct {
	Intent        Intent  `json:"intent"`
	Confidence    float64 `json:"confidence"`
	ShouldExecute bool    `json:"should_execute"`
	Scores        Scores  `json:"scores"`
}

// Context holds the resolved references of a message: extracted time
// expressions, people, priority and relative dates mapped to ISO dates.
type Context struct {
	Times         []string          `json:"times"`
	People        []string          `json:"people"`
	Priority      string            `json:"priority"`
	ResolvedDates map[string]string `json:"resolved_dates"`
}

// Plan is one parameterized action request ("RPC") ready for an agent.
type Plan struct {
	Tool       string         `json:"tool"`
	Params     map[string]any `json:"params"`
	ActionType ActionType     `json:"action_type"`
}

// Governance is the execution gate decision reported with every run.
type Governance struct {
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	ConfidenceMet       bool    `json:"confidence_met"`
	IntentIsCommand     bool    `json:"intent_is_command"`
	ExecutionApproved   bool    `json:"execution_approved"`
	ActionsCount        int     `json:"actions_count"`
}

// PipelineResult is the full trace of one pipeline run.
type PipelineResult struct {
	Input          string           `json:"input"`
	Actions        []ExtractedAction `json:"actions"`
	Classification Classification   `json:"classification"`
	Context        Context          `json:"context"`
	Plans          []Plan           `json:"plans"`
	Governance     Governance       `json:"governance"`
}

// Process runs the full pipeline on a message. now is the reference clock
// for relative-date resolution.
func Process(text string, now time.Time) PipelineResult {
	actions := ExtractActions(text)
	cls := ClassifyIntent(text, actions)
	ctx := ResolveContext(text, now)

	var plans []Plan
	if cls.ShouldExecute {
		plans = PlanActions(actions, ctx)
	}

	return PipelineResult{
		Input:          text,
		Actions:        actions,
		Classification: cls,
		Context:        ctx,
		Plans:          plans,
		Governance: Governance{
			ConfidenceThreshold: ConfidenceThreshold,
			ConfidenceMet:       cls.Confidence >= ConfidenceThreshold,
			IntentIsCommand:     cls.Intent == IntentCommand,
			ExecutionApproved:   cls.ShouldExecute,
			ActionsCount:        len(plans),
		},
	}
}
