package users

import "errors"

var ErrSelfSubscription = errors.New("self subscription is not allowed")
