package formatting

func pluralize(count int, one, few, many string) string {
	if count < 0 {
		count = -count
	}
	if count%10 == 1 && count%100 != 11 {
		return one
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return few
	}
	return many
}

// PluralizeLessons возвращает правильное склонение слова "занятие"
func PluralizeLessons(count int) string {
	return pluralize(count, "занятие", "занятия", "занятий")
}

// PluralizeWeeks возвращает правильное склонение слова "неделя" (винительный падеж)
func PluralizeWeeks(count int) string {
	return pluralize(count, "неделю", "недели", "недель")
}

// PluralizeStudents возвращает правильное склонение слова "ученик"
func PluralizeStudents(count int) string {
	return pluralize(count, "ученик", "ученика", "учеников")
}

// PluralizePayments возвращает правильное склонение слова "платёж"
func PluralizePayments(count int) string {
	return pluralize(count, "платёж", "платежа", "платежей")
}
