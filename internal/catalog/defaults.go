package catalog

import (
	"time"

	"github.com/vsa-campus/vsa-site/internal/model"
)

// DefaultEvents is the starter program shown on a fresh install. Dates are
// laid out relative to now so the directory has both upcoming and past
// entries.
func DefaultEvents(now time.Time) []model.EventDraft {
	day := func(offset int) model.Date {
		d := now.UTC().AddDate(0, 0, offset)
		return model.NewDate(time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC))
	}

	return []model.EventDraft{
		{
			Title:        "Tết Festival",
			Description:  "Celebrate the Lunar New Year with lion dancing, traditional games, áo dài fashion show and home-cooked food.",
			Date:         day(45),
			StartTime:    "17:00",
			EndTime:      "21:00",
			Location:     "Student Union Grand Ballroom",
			Category:     model.CategoryCultural,
			Featured:     true,
			MaxAttendees: 350,
			Image:        "/images/events/tet-festival.jpg",
			Price:        "Free for members, $5 general",
			Highlights:   []string{"Lion dance performance", "Bầu cua cá cọp", "Lì xì for every guest"},
			RSVPDeadline: day(40),
			IsPublished:  true,
			Tags:         []string{"lunar-new-year", "performance", "food"},
		},
		{
			Title:        "Phở Night",
			Description:  "Members teach the basics of a proper broth, then everyone builds their own bowl.",
			Date:         day(14),
			StartTime:    "18:30",
			EndTime:      "20:30",
			Location:     "Residence Hall Community Kitchen",
			Category:     model.CategoryCulinary,
			Featured:     true,
			MaxAttendees: 40,
			Image:        "/images/events/pho-night.jpg",
			Price:        "$8 ingredients fee",
			Highlights:   []string{"Hands-on cooking", "Take-home recipe card"},
			RSVPDeadline: day(10),
			IsPublished:  true,
		},
		{
			Title:        "Finals Study Jam",
			Description:  "Quiet study rooms, peer tutoring tables and bánh mì to keep everyone going.",
			Date:         day(30),
			StartTime:    "12:00",
			EndTime:      "22:00",
			Location:     "Main Library, Floor 3",
			Category:     model.CategoryAcademic,
			MaxAttendees: 80,
			Price:        "Free",
			Highlights:   []string{"Peer tutoring", "Snacks all day"},
			IsPublished:  true,
		},
		{
			Title:        "Board Game Night",
			Description:  "Cờ tướng, Uno and whatever else people bring.",
			Date:         day(7),
			StartTime:    "19:00",
			EndTime:      "23:00",
			Location:     "Student Center Room 204",
			Category:     model.CategoryGaming,
			MaxAttendees: 60,
			Price:        "Free",
			IsPublished:  true,
		},
		{
			Title:        "Lantern Making Workshop",
			Description:  "Build a paper star lantern ahead of the Mid-Autumn Festival.",
			Date:         day(-20),
			StartTime:    "15:00",
			EndTime:      "17:00",
			Location:     "Art Building Studio B",
			Category:     model.CategoryWorkshop,
			MaxAttendees: 30,
			Price:        "$3 materials",
			IsPublished:  true,
		},
		{
			Title:        "Welcome Back Mixer",
			Description:  "Meet the board and the new members over bubble tea.",
			Date:         day(-35),
			StartTime:    "18:00",
			EndTime:      "20:00",
			Location:     "Campus Green",
			Category:     model.CategorySocial,
			MaxAttendees: 150,
			Price:        "Free",
			IsPublished:  true,
		},
	}
}
