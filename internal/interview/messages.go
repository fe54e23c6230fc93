package interview

// User-facing messages shown by the form and the record list.
const (
	MsgNameRequired       = "지원자명을 입력해주세요."
	MsgAnalyzeNeedsInfo   = "분석을 위해 기본 정보를 먼저 입력해주세요."
	MsgCheckpointSaved    = "임시 저장되었습니다."
	MsgSaveFailedPrefix   = "저장 실패: "
	MsgDeleteFailed       = "삭제 중 오류가 발생했습니다."
	MsgAnalysisSaveFailed = "분석 결과를 저장하지 못했습니다."
)
