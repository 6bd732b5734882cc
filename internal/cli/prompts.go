package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/DepotGo/config"
)

// Interactive menu actions
const (
	actionStock   = "📦 Refresh stock"
	actionOrder   = "🛒 Place an order"
	actionSignup  = "👤 Create an account"
	actionUpload  = "🚀 Upload a starship report"
	actionHistory = "🕘 Show history"
	actionConfig  = "📋 Show configuration"
	actionExit    = "👋 Exit"
)

// PromptForAction asks what to do next in interactive mode
func PromptForAction() (string, error) {
	var choice string
	prompt := &survey.Select{
		Message: "What would you like to do?",
		Options: []string{actionStock, actionOrder, actionSignup, actionUpload, actionHistory, actionConfig, actionExit},
		Default: actionStock,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}
	return choice, nil
}

// PromptForUsername prompts for the account name
func PromptForUsername() (string, error) {
	var username string
	prompt := &survey.Input{
		Message: "Username:",
	}
	err := survey.AskOne(prompt, &username, survey.WithValidator(survey.Required))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(username), nil
}

// PromptForPasswords prompts for the password and its confirmation. They are
// compared by the signup handler, not here.
func PromptForPasswords() (string, string, error) {
	var password, confirm string
	if err := survey.AskOne(&survey.Password{Message: "Password:"}, &password); err != nil {
		return "", "", err
	}
	if err := survey.AskOne(&survey.Password{Message: "Confirm password:"}, &confirm); err != nil {
		return "", "", err
	}
	return password, confirm, nil
}

// PromptForItem lets the user pick a tracked item or type another one
func PromptForItem(items []config.TrackedItem) (string, error) {
	const other = "Other..."
	options := make([]string, 0, len(items)+1)
	for _, it := range items {
		options = append(options, it.Item)
	}
	options = append(options, other)

	var choice string
	if err := survey.AskOne(&survey.Select{Message: "Item to order:", Options: options}, &choice); err != nil {
		return "", err
	}
	if choice != other {
		return choice, nil
	}

	var item string
	err := survey.AskOne(&survey.Input{Message: "Item name:"}, &item, survey.WithValidator(survey.Required))
	return strings.TrimSpace(item), err
}

// PromptForQuantity prompts for an order quantity
func PromptForQuantity() (int, error) {
	var raw string
	prompt := &survey.Input{
		Message: "Quantity:",
		Default: "1",
	}
	err := survey.AskOne(prompt, &raw, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(val.(string))
		if _, err := strconv.Atoi(str); err != nil {
			return fmt.Errorf("quantity must be a whole number")
		}
		return nil
	}))
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(raw))
}

// PromptForReportPath prompts for the starship report to upload
func PromptForReportPath() (string, error) {
	var path string
	prompt := &survey.Input{
		Message: "Starship report file:",
		Suggest: func(toComplete string) []string {
			matches, _ := filepath.Glob(toComplete + "*")
			return matches
		},
	}
	err := survey.AskOne(prompt, &path, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(val.(string))
		if str == "" {
			return fmt.Errorf("no file selected")
		}
		info, err := os.Stat(str)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", str)
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(path), nil
}
