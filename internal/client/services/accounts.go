package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/acctkeeper/internal/client/models"
	"github.com/dmitrijs2005/acctkeeper/internal/totp"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("validation error")

// ErrTranslatorNotFound indicates the English translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// ValidationError maps a lowercase field name to a readable message.
type ValidationError map[string]string

func (ve ValidationError) Error() string {
	if len(ve) == 0 {
		return ErrValidation.Error()
	}
	b, err := json.Marshal(ve)
	if err != nil {
		return fmt.Sprintf("%s (failed to marshal: %v)", ErrValidation, err)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, b)
}

// Is makes errors.Is(err, ErrValidation) hold.
func (ve ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AccountInput is the plaintext form of an account, as entered in the
// editor. An empty ID means a new account.
type AccountInput struct {
	ID         string
	Nickname   string `validate:"required"`
	Username   string `validate:"required"`
	Password   string `validate:"required"`
	TOTPSecret string
}

// AccountService validates editor input and stores it encrypted.
type AccountService struct {
	vault      Vault
	validate   *validator.Validate
	translator ut.Translator
}

// NewAccountService returns an AccountService writing through v.
func NewAccountService(v Vault) (*AccountService, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	return &AccountService{vault: v, validate: validate, translator: enTrans}, nil
}

func (s *AccountService) check(in AccountInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	ve := make(ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		ve[strings.ToLower(fe.Field())] = fe.Translate(s.translator)
	}
	return ve
}

// Save validates in, encrypts its secret fields under the current vault key
// and adds or updates the account. Nickname and username are trimmed; the
// password is stored as entered. A blank second-factor secret means none.
func (s *AccountService) Save(ctx context.Context, in AccountInput) (models.Account, error) {
	in.Nickname = strings.TrimSpace(in.Nickname)
	in.Username = strings.TrimSpace(in.Username)
	if err := s.check(in); err != nil {
		return models.Account{}, err
	}

	var secret string
	if strings.TrimSpace(in.TOTPSecret) != "" {
		cleaned, err := totp.ValidateSecret(in.TOTPSecret)
		if err != nil {
			return models.Account{}, err
		}
		secret = cleaned
	}

	a := models.Account{ID: in.ID, Nickname: in.Nickname}
	var err error
	if a.EncryptedUsername, err = s.vault.Encrypt(in.Username); err != nil {
		return models.Account{}, fmt.Errorf("encrypt username: %w", err)
	}
	if a.EncryptedPassword, err = s.vault.Encrypt(in.Password); err != nil {
		return models.Account{}, fmt.Errorf("encrypt password: %w", err)
	}
	if secret != "" {
		if a.EncryptedTOTPSecret, err = s.vault.Encrypt(secret); err != nil {
			return models.Account{}, fmt.Errorf("encrypt totp secret: %w", err)
		}
	}

	if a.ID == "" {
		return s.vault.AddAccount(ctx, a)
	}
	if err := s.vault.UpdateAccount(ctx, a); err != nil {
		return models.Account{}, err
	}
	return a, nil
}

// Reveal decrypts every field of the account with the given id so it can be
// edited.
func (s *AccountService) Reveal(id string) (AccountInput, error) {
	a, err := s.vault.Account(id)
	if err != nil {
		return AccountInput{}, err
	}

	in := AccountInput{ID: a.ID, Nickname: a.Nickname}
	if in.Username, err = s.vault.Decrypt(a.EncryptedUsername); err != nil {
		return AccountInput{}, fmt.Errorf("decrypt username: %w", err)
	}
	if in.Password, err = s.vault.Decrypt(a.EncryptedPassword); err != nil {
		return AccountInput{}, fmt.Errorf("decrypt password: %w", err)
	}
	if a.HasTOTPSecret() {
		if in.TOTPSecret, err = s.vault.Decrypt(a.EncryptedTOTPSecret); err != nil {
			return AccountInput{}, fmt.Errorf("decrypt totp secret: %w", err)
		}
	}
	return in, nil
}
