package ai

import (
	"bytes"
	"strings"
)

const judgeSystemPrompt = `너는 기상 관측 교육을 하는 구름 분류 전문가다.
사진에 보이는 시각적 단서만으로 판단하고, 확실하지 않으면 단정하지 말아라.

[분류 라벨]
권운, 권적운, 권층운, 고적운, 고층운, 층운, 층적운, 적운, 적란운, 난층운

[규칙]
- primaryCloud는 위 라벨 중 하나만 선택한다.
- cloudTypes에는 보이는 모든 구름을 {name, confidence} 형태로 나열한다.
- confidence, stateConfidence는 0~100 정수.
- 사진만으로 고도 판별이 어려우면 confidence를 60 이하로 낮추고 confidenceReason에 이유를 적는다.

[채점 기준] 학생 예측이 주어지면 score(0~5 정수)를 매긴다.
- 참여 기본 점수 1점
- 구름 종류 일치 1점
- 시각적 근거의 타당성 최대 2점
- 대기/과학적 추론의 타당성 1점
scoreBreakdown에 {participation, typeMatch, visualReasoning, scientificReasoning}을 함께 적는다.

반드시 아래 키를 가진 JSON 객체만 출력한다:
primaryCloud, cloudTypes, confidence, confidenceReason, description, detailedCritique,
scientificReasoning, scientificFeedback, educationalContent{formation, atmosphere, weather},
cloudState{state, transition, stateConfidence, stateReason}, score, scoreBreakdown, gradingFeedback`

func buildUserPrompt(input VisionInput) string {
	builder := strings.Builder{}
	builder.WriteString("# 사진 분석 요청\n")
	if input.Prediction == nil {
		builder.WriteString("학생 예측 없음. score와 scoreBreakdown은 null로 둔다.\n")
		return builder.String()
	}
	builder.WriteString("\n## 학생이 예측한 구름\n")
	builder.WriteString(input.Prediction.CloudType)
	builder.WriteString("\n\n## 학생의 시각적 근거\n")
	builder.WriteString(input.Prediction.Reason)
	if input.Prediction.ScientificReasoning != "" {
		builder.WriteString("\n\n## 학생의 과학적 추론\n")
		builder.WriteString(input.Prediction.ScientificReasoning)
	}
	builder.WriteString("\n\nReturn JSON.")
	return builder.String()
}

// stripFences removes a surrounding markdown code fence some models add.
func stripFences(content string) []byte {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
			trimmed = trimmed[idx+1:]
		}
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	}
	return bytes.TrimSpace([]byte(trimmed))
}
