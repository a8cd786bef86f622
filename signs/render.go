package signs

import (
	"fmt"
	"strings"

	"github.com/ArtoLord/enoa-sign-roller/models"
)

// RenderSign renders the Discord-markdown block for a sign. While the
// sign is unresolved both outcome branches are shown; once resolved
// only the branch matching the recorded outcome remains.
func RenderSign(catalog *Catalog, sign *models.GuildSign) (string, error) {
	def, ok := catalog.Get(sign.SignID)
	if !ok {
		return "", fmt.Errorf("render sign %q: %w", sign.SignID, ErrUnknownSign)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "__**%s**__\n", def.Name)
	fmt.Fprintf(&b, "**Кости:** %s\n", def.ID)
	fmt.Fprintf(&b, "**Сложность:** %d\n\n", def.Difficulty)
	fmt.Fprintf(&b, "> *%s*\n\n", def.Description)
	fmt.Fprintf(&b, "**Эффект:** %s\n", def.Effect)

	switch sign.State {
	case models.SignStateCreated:
		fmt.Fprintf(&b, "**Успех:** %s\n", def.SuccessEffect)
		fmt.Fprintf(&b, "**Провал:** %s\n", def.FailureEffect)
	case models.SignStateSuccess:
		fmt.Fprintf(&b, "**Эффект после изменения:** %s\n", def.SuccessEffect)
	case models.SignStateFailed:
		fmt.Fprintf(&b, "**Эффект после изменения:** %s\n", def.FailureEffect)
	}

	return b.String(), nil
}

// RenderInfluenceResult builds the reply for a completed influence
// attempt: who tried, how it went, what happened to their power, and
// the re-rendered sign below.
func RenderInfluenceResult(actorID string, attempt AttemptResult, signText string) string {
	outcome := "но сделал только хуже"
	if attempt.Success {
		outcome = "и у него получилось"
	}

	powerChange := "не изменилась"
	switch {
	case attempt.Success && attempt.PowerChanged:
		powerChange = "уменьшилась"
	case !attempt.Success:
		powerChange = "увеличилась"
	}

	return fmt.Sprintf(
		"__**Знамение изменено**__\n*<@%s> попытался повлиять на судьбу, %s*\nЕго шаманская сила %s и равна %d\n\n\n%s",
		actorID, outcome, powerChange, attempt.NewPower, signText,
	)
}
