package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
	identityUseCase "github.com/adminguard/adminguard/internal/identity/usecase"
)

// RunCreateRole creates a new role definition with resource grants.
// Supports both interactive mode (when grantsJSON is empty) and non-interactive
// mode (when grantsJSON is provided). Outputs the role in text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunCreateRole(
	ctx context.Context,
	roleUseCase identityUseCase.RoleUseCase,
	logger *slog.Logger,
	name string,
	level int,
	canCreateSubordinates, bypassOwnership bool,
	grantsJSON string,
	format string,
	io IOTuple,
) error {
	logger.Info("creating new role",
		slog.String("name", name),
		slog.Int("level", level),
	)

	var grants []identityDomain.Grant
	var err error

	if grantsJSON == "" {
		// Interactive mode
		grants, err = promptForGrants(io)
		if err != nil {
			return fmt.Errorf("failed to get grants: %w", err)
		}
	} else {
		// Non-interactive mode: parse JSON
		if err := json.Unmarshal([]byte(grantsJSON), &grants); err != nil {
			return fmt.Errorf("failed to parse grants JSON: %w", err)
		}
	}

	if len(grants) == 0 {
		return fmt.Errorf("at least one grant is required")
	}

	input := &identityDomain.CreateRoleInput{
		Name:                  name,
		Level:                 level,
		CanCreateSubordinates: canCreateSubordinates,
		BypassOwnership:       bypassOwnership,
		Grants:                grants,
	}

	role, err := roleUseCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	if format == "json" {
		if err := outputRoleJSON(io.Writer, role); err != nil {
			return err
		}
	} else {
		outputRoleText(io.Writer, role)
	}

	logger.Info("role created successfully",
		slog.String("name", role.Name),
		slog.Int("level", role.Level),
		slog.Int("grants", len(role.Grants)),
	)

	return nil
}

// promptForGrants interactively prompts the user to enter resource grants.
// Accepts multiple grants until the user declines.
func promptForGrants(io IOTuple) ([]identityDomain.Grant, error) {
	reader := bufio.NewReader(io.Reader)
	writer := io.Writer
	var grants []identityDomain.Grant

	_, _ = fmt.Fprintln(writer, "\nEnter grants for the role")
	_, _ = fmt.Fprintln(writer, "Common actions: read, create, update, delete, unlock, revoke-sessions")
	_, _ = fmt.Fprintln(writer)

	grantNum := 1
	for {
		_, _ = fmt.Fprintf(writer, "Grant #%d\n", grantNum)

		_, _ = fmt.Fprint(writer, "Enter resource (e.g., 'operators' or '*'): ")
		resource, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read resource: %w", err)
		}
		resource = strings.TrimSpace(resource)

		if resource == "" {
			return nil, fmt.Errorf("resource cannot be empty")
		}

		_, _ = fmt.Fprint(writer, "Enter actions (comma-separated, e.g., 'read,update'): ")
		actionsInput, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read actions: %w", err)
		}
		actionsInput = strings.TrimSpace(actionsInput)

		actions, err := parseActions(actionsInput)
		if err != nil {
			return nil, err
		}

		grants = append(grants, identityDomain.Grant{
			Resource: resource,
			Actions:  actions,
		})

		_, _ = fmt.Fprint(writer, "Add another grant? (y/n): ")
		addAnother, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		addAnother = strings.ToLower(strings.TrimSpace(addAnother))

		if addAnother != "y" && addAnother != "yes" {
			break
		}

		_, _ = fmt.Fprintln(writer)
		grantNum++
	}

	return grants, nil
}

// parseActions converts a comma-separated string into a slice of actions.
func parseActions(input string) ([]string, error) {
	parts := strings.Split(input, ",")
	actions := make([]string, 0, len(parts))

	for _, part := range parts {
		action := strings.TrimSpace(part)
		if action != "" {
			actions = append(actions, action)
		}
	}

	if len(actions) == 0 {
		return nil, fmt.Errorf("at least one action is required")
	}

	return actions, nil
}

// outputRoleText outputs the result in human-readable text format.
func outputRoleText(writer io.Writer, role *identityDomain.Role) {
	_, _ = fmt.Fprintln(writer, "\nRole created successfully!")
	_, _ = fmt.Fprintf(writer, "Name:  %s\n", role.Name)
	_, _ = fmt.Fprintf(writer, "Level: %d\n", role.Level)
	for _, grant := range role.Grants {
		_, _ = fmt.Fprintf(writer, "Grant: %s [%s]\n", grant.Resource, strings.Join(grant.Actions, ", "))
	}
}

// outputRoleJSON outputs the result in JSON format for machine consumption.
func outputRoleJSON(writer io.Writer, role *identityDomain.Role) error {
	result := map[string]any{
		"name":                    role.Name,
		"level":                   role.Level,
		"can_create_subordinates": role.CanCreateSubordinates,
		"bypass_ownership":        role.BypassOwnership,
		"grants":                  role.Grants,
	}

	return writeJSON(writer, result)
}
