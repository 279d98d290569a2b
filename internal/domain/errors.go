package domain

import (
	"fmt"
	"net/http"
)

// AuthError is a rejected login. Message is safe to show to the user.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// ConnectivityError means a request to the backend could not complete
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: backend unreachable: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// MutationError is a failed create, update or delete against the user endpoint
type MutationError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *MutationError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s failed (%d): %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s failed (%d %s)", e.Op, e.Status, http.StatusText(e.Status))
	}
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// UnknownScenarioError means a scenario id is absent from a project's variant set
type UnknownScenarioError struct {
	ProjectID ProjectID
	Scenario  ScenarioID
}

func (e *UnknownScenarioError) Error() string {
	return fmt.Sprintf("unknown scenario %q for project %q", e.Scenario, e.ProjectID)
}
