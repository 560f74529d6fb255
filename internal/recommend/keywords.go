package recommend

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bousai-navi/backend/internal/llm"
	"github.com/bousai-navi/backend/internal/metrics"
	"github.com/bousai-navi/backend/internal/storage/models"
	"github.com/bousai-navi/backend/pkg/jsonx"
	"github.com/bousai-navi/backend/pkg/logger"
)

// ErrInvalidAIOutput means the generative service response could not be
// parsed into a non-empty keyword list. Terminal for the current generation
// request: never retried, no fallback keyword list exists.
var ErrInvalidAIOutput = errors.New("invalid AI output")

const keywordSystemPrompt = `You are an expert e-commerce shopping assistant for Rakuten Ichiba, specializing in disaster preparedness products.
Your SOLE mission is to generate a list of keywords for physical products that can be added to a shopping cart and purchased from an online store.`

const keywordPromptTemplate = `# Family Composition:
- Adults: %d
- Children: %d
- Infants: %d
- Elderly: %d
- Has Pets: %s
# CRITICAL INSTRUCTIONS:
1. ONLY list keywords for tangible, purchasable products (具体的な物品).
2. CRUCIALLY, you MUST EXCLUDE items that are personally prepared and are NOT typically sold as products online. This includes '現金' (cash), '身分証明書のコピー' (copies of ID cards), etc.
3. Also, continue to EXCLUDE all abstract concepts, actions, or places.
4. Your response MUST be ONLY a JSON array of Japanese strings.
# Examples:
- GOOD (Can be bought on Rakuten): ["防災セット 4人用", "ポータブル電源", "非常食 7日分"]
- BAD (Cannot be bought on Rakuten): ["現金", "身分証明書", "避難経路の確認"]`

// Extractor turns a household profile into ordered shopping keywords.
type Extractor struct {
	llm llm.Completer
}

func NewExtractor(completer llm.Completer) *Extractor {
	return &Extractor{llm: completer}
}

func (e *Extractor) Extract(ctx context.Context, profile models.HouseholdProfile) ([]string, error) {
	hasPet := "No"
	if profile.HasPet {
		hasPet = "Yes"
	}

	userPrompt := fmt.Sprintf(keywordPromptTemplate,
		profile.Adults,
		profile.Children,
		profile.Infants,
		profile.Elderly,
		hasPet,
	)

	resp, err := e.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: keywordSystemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("keyword extraction request failed: %w", err)
	}

	keywords, err := ParseKeywords(resp.Content)
	if err != nil {
		return nil, err
	}

	logger.Info("Keywords extracted", zap.Int("count", len(keywords)))
	metrics.KeywordsExtracted.Observe(float64(len(keywords)))

	return keywords, nil
}

// ParseKeywords extracts the first balanced JSON array from free-form
// response text and validates it is a non-empty sequence of strings.
func ParseKeywords(text string) ([]string, error) {
	var keywords []string
	if err := jsonx.UnmarshalFirstArray(text, &keywords); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAIOutput, err)
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: empty keyword array", ErrInvalidAIOutput)
	}
	return keywords, nil
}
