package notestore

import (
	"fmt"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// IntegrityError reports structural problems found in loaded or imported data.
type IntegrityError struct {
	Issues []models.Issue
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%d integrity issue(s): %s", len(e.Issues), models.FormatIssues(e.Issues))
}

func (e *IntegrityError) Unwrap() error { return apperr.ErrIntegrity }

// GuardDeleteFolder rejects deletion of the reserved root folder. Callers
// run it before DeleteFolder.
func GuardDeleteFolder(id string) error {
	if id == models.RootFolderID {
		return apperr.ErrRootFolder
	}
	return nil
}
