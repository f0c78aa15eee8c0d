package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const inviteCodeGroups = 3

// GenerateInviteCode generates a random invite code in the format XXXX-XXXX-XXXX.
// Codes are upper-case so they survive being read aloud or retyped.
func GenerateInviteCode() (string, error) {
	bytes := make([]byte, inviteCodeGroups*2)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	encoded := strings.ToUpper(hex.EncodeToString(bytes))
	groups := make([]string, 0, inviteCodeGroups)
	for i := 0; i < len(encoded); i += 4 {
		groups = append(groups, encoded[i:i+4])
	}
	return strings.Join(groups, "-"), nil
}

// NormalizeInviteCode makes user-typed codes comparable with generated ones.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
