package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

// CognitoAPI — подмножество клиента Cognito, которое нам нужно (подменяется в тестах).
type CognitoAPI interface {
	SignUp(ctx context.Context, in *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	AdminConfirmSignUp(ctx context.Context, in *cip.AdminConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.AdminConfirmSignUpOutput, error)
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	GetUser(ctx context.Context, in *cip.GetUserInput, optFns ...func(*cip.Options)) (*cip.GetUserOutput, error)
	AdminDeleteUser(ctx context.Context, in *cip.AdminDeleteUserInput, optFns ...func(*cip.Options)) (*cip.AdminDeleteUserOutput, error)
}

// Cognito — провайдер на пуле пользователей AWS Cognito. Email подтверждаем сразу
// (AdminConfirmSignUp): шага верификации почты в портале нет.
type Cognito struct {
	api        CognitoAPI
	clientID   string
	userPoolID string
}

func NewCognito(api CognitoAPI, clientID, userPoolID string) *Cognito {
	return &Cognito{api: api, clientID: clientID, userPoolID: userPoolID}
}

// NewCognitoFromEnv — клиент с цепочкой учётных данных AWS по умолчанию.
func NewCognitoFromEnv(ctx context.Context, region, clientID, userPoolID string) (*Cognito, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	return NewCognito(cip.NewFromConfig(cfg), clientID, userPoolID), nil
}

func (c *Cognito) SignUp(ctx context.Context, email, password string) (Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	out, err := c.api.SignUp(ctx, &cip.SignUpInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(email),
		Password: aws.String(password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	})
	if err != nil {
		return Account{}, mapCognitoErr(err)
	}
	acc := Account{ID: aws.ToString(out.UserSub), Email: email}

	if _, err := c.api.AdminConfirmSignUp(ctx, &cip.AdminConfirmSignUpInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(email),
	}); err != nil {
		_ = c.DeleteAccount(ctx, acc)
		return Account{}, mapCognitoErr(err)
	}
	return acc, nil
}

func (c *Cognito) SignIn(ctx context.Context, email, password string) (Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return Account{}, mapCognitoErr(err)
	}
	if out.AuthenticationResult == nil {
		// challenge (смена пароля, MFA) порталом не поддерживается
		return Account{}, ErrInvalidCredentials
	}

	user, err := c.api.GetUser(ctx, &cip.GetUserInput{AccessToken: out.AuthenticationResult.AccessToken})
	if err != nil {
		return Account{}, mapCognitoErr(err)
	}
	for _, attr := range user.UserAttributes {
		if aws.ToString(attr.Name) == "sub" {
			return Account{ID: aws.ToString(attr.Value), Email: email}, nil
		}
	}
	return Account{}, errors.New("cognito: user has no sub attribute")
}

func (c *Cognito) DeleteAccount(ctx context.Context, acc Account) error {
	_, err := c.api.AdminDeleteUser(ctx, &cip.AdminDeleteUserInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(acc.Email),
	})
	return err
}

func mapCognitoErr(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.ErrorCode() {
	case "UsernameExistsException", "AliasExistsException":
		return ErrEmailInUse
	case "InvalidPasswordException":
		return ErrWeakPassword
	case "InvalidParameterException":
		if strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "email") {
			return ErrInvalidEmail
		}
		return fmt.Errorf("cognito: %s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	case "NotAuthorizedException", "UserNotFoundException", "UserNotConfirmedException":
		return ErrInvalidCredentials
	}
	return fmt.Errorf("cognito: %s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
}
