package session

import (
	"strings"

	"github.com/dekarrin/tunamud/internal/protocol"
	"github.com/dekarrin/tunamud/internal/tmerrors"
	"github.com/dekarrin/tunamud/internal/util"
)

// Sexes and Reputations are the allowed values of their CharacterData
// fields.
var (
	Sexes       = []string{"male", "female"}
	Reputations = []string{"famous", "infamous"}
)

// CharacterData is the character creation form.
type CharacterData struct {
	Name            string
	Password        string
	ConfirmPassword string
	Sex             string

	// optional
	Email       string
	Age         int
	Title       string
	Reputation  string
	Profession  string
	Description string
}

// Validate checks the form without contacting the server. If anything is
// wrong, the returned error is a *tmerrors.ValidationFailure naming every
// missing required field and every other problem found.
func (cd CharacterData) Validate() error {
	vf := &tmerrors.ValidationFailure{}

	required := []struct {
		name  string
		value string
	}{
		{"name", cd.Name},
		{"password", cd.Password},
		{"confirm password", cd.ConfirmPassword},
		{"sex", cd.Sex},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			vf.Missing = append(vf.Missing, f.name)
		}
	}

	if cd.Password != "" && cd.ConfirmPassword != "" && cd.Password != cd.ConfirmPassword {
		vf.Problems = append(vf.Problems, "passwords do not match")
	}
	if cd.Sex != "" && !oneOf(cd.Sex, Sexes) {
		vf.Problems = append(vf.Problems, "sex must be "+util.MakeTextList(Sexes, "or"))
	}
	if cd.Reputation != "" && !oneOf(cd.Reputation, Reputations) {
		vf.Problems = append(vf.Problems, "reputation must be "+util.MakeTextList(Reputations, "or"))
	}
	if cd.Age < 0 {
		vf.Problems = append(vf.Problems, "age cannot be negative")
	}

	if vf.Empty() {
		return nil
	}
	return vf
}

func (cd CharacterData) request(id string) protocol.CreateCharacterRequest {
	return protocol.CreateCharacterRequest{
		RequestID:       id,
		Name:            strings.TrimSpace(cd.Name),
		Password:        cd.Password,
		ConfirmPassword: cd.ConfirmPassword,
		Email:           strings.TrimSpace(cd.Email),
		Age:             cd.Age,
		Sex:             strings.ToLower(strings.TrimSpace(cd.Sex)),
		Title:           strings.TrimSpace(cd.Title),
		Reputation:      strings.ToLower(strings.TrimSpace(cd.Reputation)),
		Profession:      strings.TrimSpace(cd.Profession),
		Description:     strings.TrimSpace(cd.Description),
	}
}

func oneOf(s string, allowed []string) bool {
	s = strings.TrimSpace(s)
	for _, a := range allowed {
		if strings.EqualFold(s, a) {
			return true
		}
	}
	return false
}
