package util

import (
	"regexp"
	"testing"
)

func TestGetRegexCaptureGroups(t *testing.T) {

	pattern := "/checklists/(?P<checklistId>[0-9a-fA-F]{32})/checks/(?P<checkId>[0-9a-fA-F]{32})"
	s := "/checklists/11111111111111111111111111111111/checks/22222222222222222222222222222222"
	re := regexp.MustCompile(pattern)
	result := GetRegexCaptureGroups(s, re)

	if result["checklistId"] != "11111111111111111111111111111111" {
		t.Fail()
	}
	if result["checkId"] != "22222222222222222222222222222222" {
		t.Fail()
	}

	if item := result["foo"]; item == "" {
		t.Log("Foo not found in map.")
	}
}

func TestGetRegexCaptureGroupsNoMatch(t *testing.T) {

	pattern := "/rules/(?P<ruleId>[0-9a-fA-F]{32})"
	s := "/rules/not-a-guid"
	re := regexp.MustCompile(pattern)
	result := GetRegexCaptureGroups(s, re)

	if len(result) != 0 {
		t.Logf("Expected empty capture map, got %v", result)
		t.Fail()
	}
}
