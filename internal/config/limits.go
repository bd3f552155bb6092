package config

const (
	// MaxUploadFileSize is the per-file ceiling for content uploads.
	// Requests above this fail with a dedicated too-large error rather
	// than a generic upload failure.
	MaxUploadFileSize = 50 << 20 // 50 MiB

	// MaxUploadRequestSize bounds a whole multipart request body. The
	// per-file ceiling is enforced in the upload service, so this allows
	// a full batch of maximal files plus framing overhead.
	MaxUploadRequestSize = 16*MaxUploadFileSize + (1 << 20)

	// MaxLessonTitleLength keeps titles short and displayable.
	MaxLessonTitleLength = 255

	// MaxCourseTitleLength matches lesson titles for consistency.
	MaxCourseTitleLength = 255

	// MaxPromptLength bounds generation prompts; anything longer is almost
	// certainly pasted content that belongs in the context field.
	MaxPromptLength = 8000

	// MaxGenerationContextLength bounds the optional background material
	// sent alongside a prompt.
	MaxGenerationContextLength = 32000
)
