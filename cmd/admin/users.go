package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/innouni-api/internal/models"
)

const minPasswordLength = 8

var errWeakPassword = fmt.Errorf("password must be at least %d characters", minPasswordLength)

func hashPassword(pwd string) (string, error) {
	if utf8.RuneCountInString(pwd) < minPasswordLength {
		return "", errWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (cli *commandLine) createAdmin(email, name, pwd string) error {
	ctx := context.Background()
	if _, err := cli.users.FindByEmail(ctx, email); err == nil {
		return fmt.Errorf("email %q is already registered", email)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	hash, err := hashPassword(pwd)
	if err != nil {
		return err
	}
	user := &models.User{FullName: name, Email: email, PasswordHash: hash, Role: models.RoleAdmin}
	if err := cli.users.Create(ctx, user); err != nil {
		return err
	}
	cli.logger.Info("admin created", zap.Int64("user_id", user.ID), zap.String("email", email))
	return nil
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	user, err := cli.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := hashPassword(pwd)
	if err != nil {
		return err
	}
	if err := cli.users.UpdatePassword(ctx, user.ID, hash, time.Now().UTC()); err != nil {
		return err
	}
	cli.logger.Info("password reset", zap.Int64("user_id", user.ID))
	return nil
}
