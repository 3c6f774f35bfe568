package record

import (
	"fmt"
	"strconv"
	"time"
)

//nolint:gochecknoglobals // Sample data tables.
var (
	sampleFirst = []string{"Иван", "Мария", "Алексей", "Ольга", "Дмитрий", "Елена", "Сергей", "Анна", "Павел", "Наталья"}
	sampleLast  = []string{"Иванов", "Петрова", "Смирнов", "Кузнецова", "Попов", "Соколова", "Лебедев", "Козлова", "Новиков", "Морозова", "Волков"}
	sampleJobs  = []string{"Разработчик", "Дизайнер", "Аналитик", "Менеджер", "Тестировщик", "Инженер", "Бухгалтер"}
	sampleEmail = []string{"ivan", "maria", "alexey", "olga", "dmitry", "elena", "sergey", "anna", "pavel", "natalia"}
)

// Sample returns n deterministic records with ids "1".."n", in the shape a
// json-server db.json seed would have.
func Sample(n int) []Record {
	base := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	recs := make([]Record, n)
	for i := range recs {
		status := StatusActive
		if i%3 == 2 {
			status = StatusInactive
		}
		recs[i] = Record{
			ID:         strconv.Itoa(i + 1),
			FirstName:  sampleFirst[i%len(sampleFirst)],
			LastName:   sampleLast[i%len(sampleLast)],
			Email:      fmt.Sprintf("%s.%d@example.com", sampleEmail[i%len(sampleEmail)], i+1),
			Age:        MinAge + (i*7)%(MaxAge-MinAge+1),
			City:       Cities[i%len(Cities)],
			Occupation: sampleJobs[i%len(sampleJobs)],
			Status:     status,
			JoinedDate: base.AddDate(0, 0, i*3).Format(DateLayout),
		}
	}
	return recs
}
