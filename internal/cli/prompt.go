package cli

import (
	"errors"
	"strings"

	"github.com/manifoldco/promptui"
)

// Prompter asks the user for input the flags did not supply.
type Prompter interface {
	Ask(label string, mask bool) (string, error)
	Confirm(label string) (bool, error)
	Choose(label string, items []string) (int, error)
}

type terminalPrompter struct{}

func (terminalPrompter) Ask(label string, mask bool) (string, error) {
	p := promptui.Prompt{Label: label}
	if mask {
		p.Mask = '*'
	}
	v, err := p.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(v, "\r\n"), nil
}

// Confirm treats "no" and an interrupted prompt alike.
func (terminalPrompter) Confirm(label string) (bool, error) {
	p := promptui.Prompt{Label: label, IsConfirm: true}
	if _, err := p.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (terminalPrompter) Choose(label string, items []string) (int, error) {
	s := promptui.Select{Label: label, Items: items}
	i, _, err := s.Run()
	return i, err
}
