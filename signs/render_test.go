package signs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtoLord/enoa-sign-roller/models"
)

func renderCatalog() *Catalog {
	return NewCatalog([]Definition{{
		ID:            "1234",
		Name:          "Ровная дорога",
		Difficulty:    10,
		Description:   "Кости легли ровно.",
		Effect:        "День пройдет спокойно.",
		SuccessEffect: "Спокойствие обернется удачей.",
		FailureEffect: "Спокойствие обернется скукой.",
	}})
}

func TestRenderCreatedSignShowsBothBranches(t *testing.T) {
	sign := &models.GuildSign{
		SignID:    "1234",
		CreatedBy: "7",
		CreatedAt: time.Now(),
		State:     models.SignStateCreated,
	}

	text, err := RenderSign(renderCatalog(), sign)
	require.NoError(t, err)

	assert.Contains(t, text, "__**Ровная дорога**__")
	assert.Contains(t, text, "**Кости:** 1234")
	assert.Contains(t, text, "**Сложность:** 10")
	assert.Contains(t, text, "> *Кости легли ровно.*")
	assert.Contains(t, text, "**Эффект:** День пройдет спокойно.")
	assert.Contains(t, text, "**Успех:** Спокойствие обернется удачей.")
	assert.Contains(t, text, "**Провал:** Спокойствие обернется скукой.")
}

func TestRenderResolvedSignShowsOnlyMatchingBranch(t *testing.T) {
	resolver := "9"

	tests := []struct {
		name    string
		state   models.SignState
		present string
		absent  string
	}{
		{"success", models.SignStateSuccess, "удачей", "скукой"},
		{"failure", models.SignStateFailed, "скукой", "удачей"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sign := &models.GuildSign{
				SignID:     "1234",
				CreatedBy:  "7",
				CreatedAt:  time.Now(),
				State:      tt.state,
				ResolvedBy: &resolver,
			}

			text, err := RenderSign(renderCatalog(), sign)
			require.NoError(t, err)

			assert.Contains(t, text, "**Эффект после изменения:**")
			assert.Contains(t, text, tt.present)
			assert.NotContains(t, text, tt.absent)
			assert.NotContains(t, text, "**Успех:**")
			assert.NotContains(t, text, "**Провал:**")
		})
	}
}

func TestRenderUnknownSign(t *testing.T) {
	sign := &models.GuildSign{SignID: "4444", State: models.SignStateCreated}

	_, err := RenderSign(renderCatalog(), sign)
	assert.ErrorIs(t, err, ErrUnknownSign)
}

func TestRenderInfluenceResult(t *testing.T) {
	text := RenderInfluenceResult("9", AttemptResult{Success: true, NewPower: 9, PowerChanged: true}, "знак")
	assert.Contains(t, text, "<@9>")
	assert.Contains(t, text, "и у него получилось")
	assert.Contains(t, text, "уменьшилась")
	assert.Contains(t, text, "равна 9")
	assert.Contains(t, text, "знак")

	text = RenderInfluenceResult("9", AttemptResult{Success: true, NewPower: 10, PowerChanged: false}, "знак")
	assert.Contains(t, text, "не изменилась")

	text = RenderInfluenceResult("9", AttemptResult{Success: false, NewPower: 11, PowerChanged: true}, "знак")
	assert.Contains(t, text, "но сделал только хуже")
	assert.Contains(t, text, "увеличилась")
	assert.Contains(t, text, "равна 11")
}
