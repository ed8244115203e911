package services

const (
	LogActionFileUpload    = "FILE_UPLOAD"
	LogActionTransformCall = "TRANSFORM_CALL"
	LogActionS3Upload      = "S3_UPLOAD"
	LogActionS3Presign     = "S3_PRESIGN"
	LogActionS3Delete      = "S3_DELETE"
	LogActionPreview       = "PREVIEW"
	LogActionScratchSweep  = "SCRATCH_SWEEP"
	LogOutcomeSuccess      = "SUCCESS"
	LogOutcomeFail         = "FAIL"
)
