package tunamud

import (
	"strconv"
	"strings"

	"github.com/dekarrin/tunamud/internal/session"
	"github.com/dekarrin/tunamud/internal/tmerrors"
)

// formField is one question asked while creating a character.
type formField struct {
	prompt   string
	mask     bool
	optional bool
	set      func(cd *session.CharacterData, v string) error
}

var creationFields = []formField{
	{prompt: "Name: ", set: func(cd *session.CharacterData, v string) error {
		cd.Name = v
		return nil
	}},
	{prompt: "Password: ", mask: true, set: func(cd *session.CharacterData, v string) error {
		cd.Password = v
		return nil
	}},
	{prompt: "Confirm password: ", mask: true, set: func(cd *session.CharacterData, v string) error {
		cd.ConfirmPassword = v
		return nil
	}},
	{prompt: "Email (optional): ", optional: true, set: func(cd *session.CharacterData, v string) error {
		cd.Email = v
		return nil
	}},
	{prompt: "Age (optional): ", optional: true, set: func(cd *session.CharacterData, v string) error {
		if v == "" {
			cd.Age = 0
			return nil
		}
		age, err := strconv.Atoi(v)
		if err != nil {
			msg := "age must be a number"
			if strings.Contains(v, ".") {
				msg = "age must be a number without a decimal dot"
			}
			return &tmerrors.ValidationFailure{Problems: []string{msg}}
		}
		cd.Age = age
		return nil
	}},
	{prompt: "Sex (" + strings.Join(session.Sexes, "/") + "): ", set: func(cd *session.CharacterData, v string) error {
		cd.Sex = v
		return nil
	}},
	{prompt: "Title (optional): ", optional: true, set: func(cd *session.CharacterData, v string) error {
		cd.Title = v
		return nil
	}},
	{prompt: "Reputation (" + strings.Join(session.Reputations, "/") + ", optional): ", optional: true, set: func(cd *session.CharacterData, v string) error {
		cd.Reputation = v
		return nil
	}},
	{prompt: "Profession (optional): ", optional: true, set: func(cd *session.CharacterData, v string) error {
		cd.Profession = v
		return nil
	}},
	{prompt: "Description (optional): ", optional: true, set: func(cd *session.CharacterData, v string) error {
		cd.Description = v
		return nil
	}},
}

// creationForm is a character creation form being filled in one field at a
// time.
type creationForm struct {
	data session.CharacterData
	step int

	// retryName is set when the server turned the form down and only a new
	// name is being asked for.
	retryName bool
}

func (f *creationForm) current() formField {
	return creationFields[f.step]
}

// answer fills in the current field with the player's answer and moves on.
// It returns whether the form is complete. If the answer is not usable, the
// error says why and the same field is asked again.
func (f *creationForm) answer(line string) (done bool, err error) {
	fld := creationFields[f.step]
	if !fld.mask {
		line = strings.TrimSpace(line)
	}
	if err := fld.set(&f.data, line); err != nil {
		return false, err
	}

	if f.retryName {
		return true, nil
	}
	f.step++
	return f.step >= len(creationFields), nil
}

// askNameAgain rewinds the form to the name field, keeping every other
// answer.
func (f *creationForm) askNameAgain() {
	f.step = 0
	f.retryName = true
}
