package domain

import "errors"

var (
	ErrSurveyNotFound       = errors.New("survey not found")
	ErrSurveyExists         = errors.New("survey already exists")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
)
