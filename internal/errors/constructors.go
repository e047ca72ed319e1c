package errors

import "fmt"

// Error codes used across the core. Callers match with errors.Is against a
// constructor's result or with HasCode.
const (
	CodeMissingCredential = "missing_credential"
	CodeEngineFailed      = "engine_failed"
	CodeRemoteNotFound    = "remote_not_found"
	CodeRemoteConflict    = "remote_conflict"
	CodeRemoteAuth        = "remote_auth"
	CodeRemoteForbidden   = "remote_forbidden"
	CodeRemoteFailed      = "remote_failed"
	CodePatchMismatch     = "patch_mismatch"
	CodeToolResolution    = "tool_resolution"
)

// MissingCredential creates an error for an absent API credential.
// Nothing is attempted against the network when this is returned.
func MissingCredential(name string) *HubError {
	return &HubError{
		Category:  CategoryConfig,
		Code:      CodeMissingCredential,
		Message:   fmt.Sprintf("%s is not configured - set it in the environment or pass it on the command line", name),
		Retryable: false,
	}
}

// EngineFailed creates an error for a failed reasoning-engine round trip.
// Engine failures end the turn; the conversation stays usable.
func EngineFailed(cause error) *HubError {
	return &HubError{
		Category:  CategoryEngine,
		Code:      CodeEngineFailed,
		Message:   "reasoning engine request failed",
		Retryable: false,
		Cause:     cause,
	}
}

// RemoteNotFound creates an error for a missing remote file or directory.
func RemoteNotFound(path string) *HubError {
	return &HubError{
		Category:  CategoryRemote,
		Code:      CodeRemoteNotFound,
		Message:   fmt.Sprintf("File not found: %s", path),
		Retryable: false,
	}
}

// RemoteConflict creates an error for a stale version token on write/delete.
func RemoteConflict(path string) *HubError {
	return &HubError{
		Category:  CategoryRemote,
		Code:      CodeRemoteConflict,
		Message:   fmt.Sprintf("Conflict writing %s: the file changed remotely - read it again before retrying", path),
		Retryable: false,
	}
}

// RemoteAuth creates an error for invalid hosting credentials.
func RemoteAuth() *HubError {
	return &HubError{
		Category:  CategoryRemote,
		Code:      CodeRemoteAuth,
		Message:   "GitHub rejected the credentials - check your token",
		Retryable: false,
	}
}

// RemoteForbidden creates an error for insufficient token scope.
func RemoteForbidden() *HubError {
	return &HubError{
		Category:  CategoryRemote,
		Code:      CodeRemoteForbidden,
		Message:   "GitHub denied access - the token lacks the required scope",
		Retryable: false,
	}
}

// RemoteFailed creates an error for any other hosting API failure.
func RemoteFailed(cause error) *HubError {
	return &HubError{
		Category:  CategoryRemote,
		Code:      CodeRemoteFailed,
		Message:   "GitHub request failed",
		Retryable: true,
		Cause:     cause,
	}
}

// PatchMismatch creates an error for a replace_in_file search miss.
// Distinguished from a generic write failure: it means the engine's view of
// the file content is stale and a fresh read_file should come first.
func PatchMismatch(path string) *HubError {
	return &HubError{
		Category:  CategoryPatch,
		Code:      CodePatchMismatch,
		Message:   fmt.Sprintf("Could not find the 'search' text in %s. The search text must match exactly, including whitespace.", path),
		Retryable: false,
	}
}

// ToolResolution creates an error for unresolvable tool arguments
// (owner/repo/path missing from both args and context).
func ToolResolution(what string) *HubError {
	return &HubError{
		Category:  CategoryTool,
		Code:      CodeToolResolution,
		Message:   fmt.Sprintf("Context (%s) is missing. Pass it explicitly or open a repository first.", what),
		Retryable: false,
	}
}
