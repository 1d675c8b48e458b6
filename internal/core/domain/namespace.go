package domain

import (
	"fmt"
	"strings"
)

// Namespace partitions one user's vectors from every other user's.
type Namespace string

// NamespaceForUser returns the namespace that scopes all of a user's chunks.
func NamespaceForUser(userID string) (Namespace, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("%w: user ID is required", ErrInvalidInput)
	}
	return Namespace("user-" + userID), nil
}

// String returns the string representation.
func (n Namespace) String() string {
	return string(n)
}
