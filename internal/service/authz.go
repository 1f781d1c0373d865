package service

import "hungrypanda/internal/core/apperr"

// authorize 只有 owner 本人可以修改
func authorize(actor, owner, msg string) error {
	if actor == "" || actor != owner {
		return apperr.NotOwner(msg)
	}
	return nil
}
