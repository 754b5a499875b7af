package commands

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"math/big"

	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
	identityUseCase "github.com/adminguard/adminguard/internal/identity/usecase"
)

// Character classes for generated passwords. Ambiguous glyphs (0/O, 1/l/I)
// are excluded so a password read over the phone survives transcription.
const (
	passwordUpper   = "ABCDEFGHJKMNPQRSTUVWXYZ"
	passwordLower   = "abcdefghjkmnpqrstuvwxyz"
	passwordDigits  = "23456789"
	generatedLength = 20
)

// RunCreateOperator provisions a new operator account bound to a role.
// When password is empty a random one satisfying the strength policy is
// generated and printed once. Outputs the operator in text or JSON format.
//
// Requirements: Database must be migrated and the role must exist.
func RunCreateOperator(
	ctx context.Context,
	operatorUseCase identityUseCase.OperatorUseCase,
	logger *slog.Logger,
	writer io.Writer,
	email, name, roleName, password string,
	format string,
) error {
	logger.Info("creating new operator",
		slog.String("email", email),
		slog.String("role", roleName),
	)

	generated := false
	if password == "" {
		var err error
		password, err = generatePassword(generatedLength)
		if err != nil {
			return fmt.Errorf("failed to generate password: %w", err)
		}
		generated = true
	}

	input := &identityDomain.CreateOperatorInput{
		Email:    email,
		Name:     name,
		Password: password,
		RoleName: roleName,
		IsActive: true,
	}

	operator, err := operatorUseCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}

	if format == "json" {
		if err := outputOperatorJSON(writer, operator, password, generated); err != nil {
			return err
		}
	} else {
		outputOperatorText(writer, operator, password, generated)
	}

	logger.Info("operator created successfully",
		slog.String("operator_id", operator.ID.String()),
		slog.String("email", operator.Email),
		slog.String("role", operator.RoleName),
	)

	return nil
}

// generatePassword builds a random password containing at least one upper
// case letter, one lower case letter, and one digit.
func generatePassword(length int) (string, error) {
	charset := passwordUpper + passwordLower + passwordDigits

	buf := make([]byte, length)
	classes := []string{passwordUpper, passwordLower, passwordDigits}
	for i := range buf {
		source := charset
		if i < len(classes) {
			// The first positions come from distinct classes so the
			// policy holds regardless of the remaining draws.
			source = classes[i]
		}
		index, err := rand.Int(rand.Reader, big.NewInt(int64(len(source))))
		if err != nil {
			return "", err
		}
		buf[i] = source[index.Int64()]
	}

	// Shuffle so the class-guaranteed characters are not positional.
	for i := len(buf) - 1; i > 0; i-- {
		swap, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		buf[i], buf[swap.Int64()] = buf[swap.Int64()], buf[i]
	}

	return string(buf), nil
}

// outputOperatorText outputs the result in human-readable text format.
func outputOperatorText(
	writer io.Writer,
	operator *identityDomain.Operator,
	password string,
	generated bool,
) {
	_, _ = fmt.Fprintln(writer, "\nOperator created successfully!")
	_, _ = fmt.Fprintf(writer, "Operator ID: %s\n", operator.ID.String())
	_, _ = fmt.Fprintf(writer, "Email:       %s\n", operator.Email)
	_, _ = fmt.Fprintf(writer, "Role:        %s\n", operator.RoleName)

	if generated {
		_, _ = fmt.Fprintf(writer, "Password:    %s\n", password)
		_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The password is shown only once. Store it securely.")
	}
}

// outputOperatorJSON outputs the result in JSON format for machine consumption.
func outputOperatorJSON(
	writer io.Writer,
	operator *identityDomain.Operator,
	password string,
	generated bool,
) error {
	result := map[string]any{
		"operator_id": operator.ID.String(),
		"email":       operator.Email,
		"role":        operator.RoleName,
	}
	if generated {
		result["password"] = password
	}

	return writeJSON(writer, result)
}
