package grading

import (
	"math/rand/v2"
	"sync"
)

const syntheticNotice = "데모 모드 결과입니다. 실제 AI 분석이 아니므로 참고용으로만 사용하세요."

var syntheticDescriptions = map[string]string{
	"권운":  "높은 고도(5-13km)에서 관찰되는 가늘고 섬세한 깃털 모양의 구름입니다. 빙정으로 이루어져 있으며 맑은 날씨를 나타냅니다.",
	"권적운": "높은 고도에 작고 둥근 구름 덩어리들이 물결 무늬나 비늘 모양으로 배열된 구름입니다.",
	"권층운": "높은 고도에서 하늘 전체를 얇게 덮는 막 형태의 구름으로, 해나 달 주위에 무리를 만들기도 합니다.",
	"고적운": "중간 고도(2-7km)에 나타나는 회백색의 둥근 구름 덩어리들이 무리를 지어 나타나는 구름입니다.",
	"고층운": "중간 고도에서 하늘을 균일하게 덮는 회색 또는 푸른색의 막 구름입니다.",
	"층운":  "낮은 고도(지표-2km)에서 균일한 회색 구름층을 이루며, 이슬비를 내릴 수 있습니다.",
	"층적운": "낮은 고도에 크고 둥근 구름 덩어리들이 규칙적으로 배열된 구름입니다.",
	"적운":  "좋은 날씨에 나타나는 솜사탕 모양의 뭉게구름으로, 수직으로 발달합니다.",
	"적란운": "강한 상승기류로 수직 발달한 거대한 구름으로, 천둥 번개를 동반합니다.",
	"난층운": "낮은 고도에서 하늘을 어둡게 덮으며 지속적인 비나 눈을 내리는 구름입니다.",
}

// SyntheticGenerator produces demo judgments when the vision provider is unavailable.
// Half of the time it echoes the learner's guess. Judgments carry no score.
type SyntheticGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSyntheticGenerator seeds a generator; equal seeds yield equal sequences.
func NewSyntheticGenerator(seed uint64) *SyntheticGenerator {
	return &SyntheticGenerator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate returns a synthetic assessment for the prediction.
func (g *SyntheticGenerator) Generate(user Prediction) Assessment {
	g.mu.Lock()
	echo := g.rng.Float64() > 0.5
	pick := g.rng.IntN(len(Classes))
	confidence := g.rng.IntN(20) + 75
	g.mu.Unlock()

	cloud := Classes[pick].Name
	if echo && user.CloudType != "" {
		cloud = user.CloudType
	}

	description, ok := syntheticDescriptions[cloud]
	if !ok {
		description = syntheticNotice
	}

	return Synthetic(Judgment{
		PrimaryCloud:     cloud,
		CloudTypes:       []CloudDetection{{Name: cloud, Confidence: confidence}},
		Confidence:       confidence,
		ConfidenceReason: syntheticNotice,
		Description:      description,
		GradingFeedback:  syntheticNotice,
	})
}
