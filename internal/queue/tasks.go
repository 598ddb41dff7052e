package queue

const TypeResumeExtract = "resume:extract"

type ResumeExtractPayload struct {
	IdentityID string `json:"identity_id"`
}
