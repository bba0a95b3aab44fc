package oracle

import (
	"fmt"
	"strings"
)

// #region rubric

// Rubric is the ordinal difficulty scale shared by the generation and judge
// prompts. Band i describes complexity i.
type Rubric []string

// DefaultRubric is the 11-band scale, from an effortless instant action to a
// multi-week project that is both physically and intellectually demanding.
var DefaultRubric = Rubric{
	"секундное действие, не требующее каких-то усилий",
	"рутинное действие, о котором даже не задумываемся",
	"ежедневное базовое бытовое действие, не более пары минут",
	"ежедневное базовое бытовое действие, не более получаса",
	"действие средней сложности, от получаса до двух часов непрерывной работы",
	"действие средней сложности, от двух до четырех часов непрерывной работы",
	"действие средней сложности, требующее физических усилий, более двух часов работы",
	"действие средней сложности, требующее физических и интеллектуальных усилий, более двух часов работы",
	"действие повышенной сложности на стыке интеллектуального и физического труда",
	"действие повышенной сложности на стыке интеллектуального и физического труда, создание или реставрация чего-то уникального",
	"многонедельный интеллектуально и физически сложный процесс",
}

// DefaultCategories are the topics a generation request is drawn from.
var DefaultCategories = []string{
	"домашняя инженерия и электроника",
	"агротехника и садоводство",
	"кулинария и нутрициология",
	"финансы и планирование",
	"образование и сложные навыки",
	"ремонт и реставрация",
	"информационные технологии и софт",
	"здоровье и биохакинг",
	"химия и физика в быту",
	"организация пространства и логистика",
}

// DefaultBannedTopics are already overrepresented in the dataset.
var DefaultBannedTopics = []string{"посуда", "стирка", "фотографии", "котята", "часы"}

// seriousThreshold is the target above which the generator is asked for a
// serious intellectual or physical task.
const seriousThreshold = 5

func (r Rubric) write(b *strings.Builder, indent string) {
	for i, band := range r {
		fmt.Fprintf(b, "%s%d - %s\n", indent, i, band)
	}
}

// #endregion rubric

// #region generation-prompt

// BuildGenerationPrompt asks for one action description in category at the
// given target complexity.
func BuildGenerationPrompt(category string, target int, rubric Rubric, banned []string) string {
	var b strings.Builder

	b.WriteString("Придумай одно уникальное действие в сфере быта или обучения.\n")
	fmt.Fprintf(&b, "КАТЕГОРИЯ: %s\n", category)
	fmt.Fprintf(&b, "ЦЕЛЕВАЯ СЛОЖНОСТЬ: %d из %d.\n\n", target, len(rubric)-1)

	b.WriteString("ПРАВИЛА:\n")
	b.WriteString("1. Формат: 5-10 слов, прошедшее время, нижний регистр, БЕЗ МЕСТОИМЕНИЙ (мой, свой).\n")
	fmt.Fprintf(&b, "2. Если сложность > %d, придумай серьезную интеллектуальную или физическую задачу.\n", seriousThreshold)
	b.WriteString("3. Ориентируйся на эти оценки:\n")
	rubric.write(&b, "   ")
	n := 4
	if len(banned) > 0 {
		fmt.Fprintf(&b, "%d. ЗАПРЕЩЕНО: %s (уже много в базе).\n", n, strings.Join(banned, ", "))
		n++
	}
	fmt.Fprintf(&b, "%d. Будь конкретным в терминах. Только текст действия!\n", n)

	return b.String()
}

// #endregion generation-prompt

// #region judge-prompt

// BuildJudgePrompt asks for a single numeric complexity score of action.
func BuildJudgePrompt(action string, rubric Rubric) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Оцени сложность действия по шкале 0-%d (физический и умственный труд).\n", len(rubric)-1)
	fmt.Fprintf(&b, "Действие: %q\n\n", action)
	b.WriteString("Критерии:\n")
	rubric.write(&b, "   ")
	b.WriteString("\nВерни ТОЛЬКО число (например 7.5).\n")

	return b.String()
}

// #endregion judge-prompt
