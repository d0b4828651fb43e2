package main

import (
	"reflect"
	"testing"
)

func TestDeduplicateKeepsDeclinedOverEarlierStages(t *testing.T) {
	apps := []Application{
		{Company: "Acme", JobTitle: "SWE Intern", Status: StatusAssessment, Date: "2025-01-01", Location: "Unknown"},
		{Company: "Acme", JobTitle: "SWE Intern", Status: StatusDeclined, Date: "2025-01-10", Location: "NYC"},
	}

	out := DeduplicateApplications(apps)
	if len(out) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(out))
	}
	got := out[0]
	if got.Status != StatusDeclined || got.Location != "NYC" || got.Date != "2025-01-10" {
		t.Fatalf("expected the Declined/NYC/2025-01-10 record to survive, got %+v", got)
	}
}

func TestDeduplicateDeclinedSurvivesRegardlessOfCompleteness(t *testing.T) {
	apps := []Application{
		{Company: "Acme", JobTitle: "SWE", Status: StatusInterviewed, Date: "2025-03-01", Location: "Boston"},
		{Company: "Acme", JobTitle: "SWE", Status: StatusDeclined, Date: "", Location: "Unknown"},
		{Company: "Acme", JobTitle: "SWE", Status: StatusOffer, Date: "2025-03-05", Location: "Boston"},
	}

	out := DeduplicateApplications(apps)
	if len(out) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(out))
	}
	if out[0].Status != StatusDeclined {
		t.Fatalf("expected Declined to survive over Offer and Interviewed, got %s", out[0].Status)
	}
}

func TestDeduplicateFewerUnknownsWins(t *testing.T) {
	apps := []Application{
		{Company: "Globex", JobTitle: "DS", Status: StatusInterviewed, Date: "2025-02-10", Location: "Unknown"},
		{Company: "Globex", JobTitle: "DS", Status: StatusInterviewed, Date: "2025-02-01", Location: "Remote"},
	}

	out := DeduplicateApplications(apps)
	if len(out) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(out))
	}
	// The complete record wins even though its date is older.
	if out[0].Location != "Remote" {
		t.Fatalf("expected the record without Unknown fields to survive, got %+v", out[0])
	}
}

func TestDeduplicateLaterDateBreaksRemainingTies(t *testing.T) {
	apps := []Application{
		{Company: "Initech", JobTitle: "SRE", Status: StatusApplied, Date: "2025-04-01", Location: "Austin"},
		{Company: "Initech", JobTitle: "SRE", Status: StatusApplied, Date: "2025-04-15", Location: "Dallas"},
	}

	out := DeduplicateApplications(apps)
	if len(out) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(out))
	}
	if out[0].Date != "2025-04-15" {
		t.Fatalf("expected the later-dated record to survive, got %+v", out[0])
	}
}

func TestDeduplicateRealDateBeatsMissingDate(t *testing.T) {
	apps := []Application{
		{Company: "Initech", JobTitle: "SRE", Status: StatusApplied, Date: "", Location: "Austin"},
		{Company: "Initech", JobTitle: "SRE", Status: StatusApplied, Date: "2020-01-01", Location: "Dallas"},
		{Company: "Hooli", JobTitle: "SRE", Status: StatusApplied, Date: "not-a-date", Location: "SF"},
		{Company: "Hooli", JobTitle: "SRE", Status: StatusApplied, Date: "2019-06-01", Location: "SF"},
	}

	out := DeduplicateApplications(apps)
	if len(out) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(out))
	}
	if out[0].Date != "2020-01-01" {
		t.Fatalf("expected dated record to beat dateless one, got %+v", out[0])
	}
	if out[1].Date != "2019-06-01" {
		t.Fatalf("expected dated record to beat malformed-date one, got %+v", out[1])
	}
}

func TestDeduplicateIdenticalKeysFirstWins(t *testing.T) {
	apps := []Application{
		{Company: "Acme", JobTitle: "PM", Status: StatusApplied, Date: "2025-05-01", Location: "LA"},
		{Company: "Acme", JobTitle: "PM", Status: StatusApplied, Date: "2025-05-01", Location: "SF"},
	}

	out := DeduplicateApplications(apps)
	if len(out) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(out))
	}
	if out[0].Location != "LA" {
		t.Fatalf("expected first-encountered record to win the full tie, got %+v", out[0])
	}
}

func TestDeduplicateIdentityIsCaseSensitive(t *testing.T) {
	apps := []Application{
		{Company: "Acme", JobTitle: "SWE", Status: StatusApplied, Date: "2025-01-01"},
		{Company: "acme", JobTitle: "SWE", Status: StatusApplied, Date: "2025-01-02"},
		{Company: "Acme", JobTitle: "swe", Status: StatusApplied, Date: "2025-01-03"},
	}

	out := DeduplicateApplications(apps)
	if len(out) != 3 {
		t.Fatalf("expected case-differing keys to stay distinct, got %d survivors", len(out))
	}
}

func TestDeduplicatePreservesFirstSeenOrder(t *testing.T) {
	apps := []Application{
		{Company: "C1", JobTitle: "A", Status: StatusApplied, Date: "2025-01-01"},
		{Company: "C2", JobTitle: "B", Status: StatusApplied, Date: "2025-01-02"},
		{Company: "C1", JobTitle: "A", Status: StatusDeclined, Date: "2025-01-03"},
		{Company: "C3", JobTitle: "C", Status: StatusApplied, Date: "2025-01-04"},
	}

	out := DeduplicateApplications(apps)
	var companies []string
	for _, app := range out {
		companies = append(companies, app.Company)
	}
	want := []string{"C1", "C2", "C3"}
	if !reflect.DeepEqual(companies, want) {
		t.Fatalf("expected survivor order %v, got %v", want, companies)
	}
	if out[0].Status != StatusDeclined {
		t.Fatalf("expected C1's Declined record to survive, got %s", out[0].Status)
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	apps := []Application{
		{Company: "Acme", JobTitle: "SWE", Status: StatusApplied, Date: "2025-01-01"},
		{Company: "Acme", JobTitle: "SWE", Status: StatusDeclined, Date: "2025-01-05"},
		{Company: "Globex", JobTitle: "DS", Status: StatusOffer, Date: ""},
		{Company: "Globex", JobTitle: "DS", Status: StatusOffer, Date: "2025-02-02"},
		{Company: "Hooli", JobTitle: "PM", Status: StatusAssessment, Date: "2025-03-03"},
	}

	once := DeduplicateApplications(apps)
	twice := DeduplicateApplications(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("deduplicate not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestDeduplicateSingletonsPassThrough(t *testing.T) {
	apps := []Application{
		{Company: "Acme", JobTitle: "SWE", Status: StatusApplied, Date: "2025-01-01", Location: "Unknown"},
		{Company: "Globex", JobTitle: "DS", Status: StatusOffer, Date: "bad-date", Location: "NYC"},
	}

	out := DeduplicateApplications(apps)
	if !reflect.DeepEqual(out, apps) {
		t.Fatalf("expected singletons unchanged, got %+v", out)
	}
}
