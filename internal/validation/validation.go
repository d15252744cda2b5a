package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// EmailPattern определяет допустимый формат e-mail: local@domain.tld
var EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

const (
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 5
	// MinTitleLen минимальная длина заголовка поста
	MinTitleLen = 5
	// MinContentLen минимальная длина текста поста
	MinContentLen = 5
	// MaxEmailLen максимальная длина e-mail
	MaxEmailLen = 254
)

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail проверяет формат e-mail адреса
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > MaxEmailLen || !EmailPattern.MatchString(email) {
		return errors.New("Please enter a valid e-mail address.")
	}
	return nil
}

// ValidatePassword проверяет минимальную длину пароля (после trim)
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(strings.TrimSpace(password)) < MinPasswordLen {
		return fmt.Errorf("Password is too short. Minimum %d characters.", MinPasswordLen)
	}
	return nil
}

// ValidateName проверяет, что имя не пустое
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("Name is required.")
	}
	return nil
}

// ValidateTitle проверяет минимальную длину заголовка
func ValidateTitle(title string) error {
	if utf8.RuneCountInString(strings.TrimSpace(title)) < MinTitleLen {
		return fmt.Errorf("Title is too short, minimum of %d characters required.", MinTitleLen)
	}
	return nil
}

// ValidateContent проверяет минимальную длину текста поста
func ValidateContent(content string) error {
	if utf8.RuneCountInString(strings.TrimSpace(content)) < MinContentLen {
		return fmt.Errorf("Content is too short, minimum of %d characters required.", MinContentLen)
	}
	return nil
}

// ValidateStatus проверяет, что статус не пустой
func ValidateStatus(status string) error {
	if strings.TrimSpace(status) == "" {
		return errors.New("Status is required.")
	}
	return nil
}

// Collect runs every check and returns the messages of the failed ones, in order.
// Returns nil when all checks pass.
func Collect(errs ...error) []string {
	var messages []string
	for _, err := range errs {
		if err != nil {
			messages = append(messages, err.Error())
		}
	}
	return messages
}
