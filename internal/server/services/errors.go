package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clinicauth/internal/common"
)

// storageError keeps common.ErrorNotFound as is and tags everything else as
// common.ErrorStorage.
func storageError(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("%w: %w", common.ErrorStorage, err)
}
