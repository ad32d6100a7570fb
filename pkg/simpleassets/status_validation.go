package simpleassets

import "fmt"

// Valid reports whether s is one of the known lifecycle states.
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetStatusPending, AssetStatusUploading, AssetStatusCompleted, AssetStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no transition may leave s.
func (s AssetStatus) IsTerminal() bool {
	return s == AssetStatusCompleted || s == AssetStatusFailed
}

// ParseAssetStatus converts a persisted status string back to AssetStatus.
func ParseAssetStatus(s string) (AssetStatus, error) {
	status := AssetStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// canTransition checks a lifecycle move against the publish state machine.
// PENDING may fail directly when the payload is empty.
func canTransition(from, to AssetStatus) (bool, error) {
	if !from.Valid() {
		return false, fmt.Errorf("%w: unknown status %s", ErrInvalidStatus, from)
	}
	if !to.Valid() {
		return false, fmt.Errorf("%w: unknown status %s", ErrInvalidStatus, to)
	}

	switch from {
	case AssetStatusPending:
		if to == AssetStatusUploading || to == AssetStatusFailed {
			return true, nil
		}
		return false, fmt.Errorf("%w: pending asset can only start uploading or fail (requested: %s)", ErrInvalidStatus, to)
	case AssetStatusUploading:
		if to == AssetStatusCompleted || to == AssetStatusFailed {
			return true, nil
		}
		return false, fmt.Errorf("%w: uploading asset can only complete or fail (requested: %s)", ErrInvalidStatus, to)
	default:
		return false, fmt.Errorf("%w: asset status %s is terminal", ErrInvalidStatus, from)
	}
}
