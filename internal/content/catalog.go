// Package content holds the built-in Punjab learning material used when no database is
// configured, and to seed an empty one.
package content

import (
	"time"

	"peco-service/internal/domain"
)

// PunjabQuizID is the id of the built-in quiz.
const PunjabQuizID = "punjab-environmental-quiz"

// Quizzes returns the built-in quizzes keyed by id.
func Quizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{PunjabQuizID: PunjabQuiz()}
}

// PunjabQuiz is the five-question environment challenge.
func PunjabQuiz() domain.Quiz {
	return domain.Quiz{
		ID:          PunjabQuizID,
		Title:       "Punjab Environment Challenge",
		Description: "Test your knowledge about Punjab's environmental challenges and solutions!",
		TimeLimit:   domain.DefaultTimeLimit,
		Questions: []domain.Question{
			{
				ID:     "q1",
				Type:   domain.QuestionSingleChoice,
				Prompt: "What is the main cause of air pollution in Punjab during October-November?",
				Hint:   "Think about what farmers do with leftover crop residue!",
				Media:  "https://images.unsplash.com/photo-1574263867128-a9b6f0a34e03?w=500&h=300&fit=crop",
				Options: []domain.Option{
					{ID: "a", Text: "Stubble burning by farmers after rice harvest"},
					{ID: "b", Text: "Too many cars in cities"},
					{ID: "c", Text: "Factory pollution from Ludhiana"},
					{ID: "d", Text: "Dust storms from Rajasthan"},
				},
				CorrectChoice: "a",
				Points:        100,
				Explanation:   "Stubble burning (parali jalaana) is the biggest cause of air pollution in Punjab during harvest season.",
			},
			{
				ID:     "q2",
				Type:   domain.QuestionImageChoice,
				Prompt: "Which river is most important for Punjab's agriculture but faces serious pollution?",
				Hint:   "Look at these Punjab rivers and choose the most polluted one.",
				Options: []domain.Option{
					{ID: "a", Text: "River Sutlej (Satluj)", Image: "https://images.unsplash.com/photo-1559827260-dc66d52bef19?w=300&h=200&fit=crop", Alt: "Sutlej river with pollution"},
					{ID: "b", Text: "River Beas", Image: "https://images.unsplash.com/photo-1584464491033-06628f3a6b7b?w=300&h=200&fit=crop", Alt: "Beas river flowing"},
					{ID: "c", Text: "River Ravi", Image: "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=300&h=200&fit=crop", Alt: "Ravi river near border"},
				},
				CorrectChoice: "a",
				Points:        150,
				Explanation:   "The Sutlej is heavily polluted by industrial waste and untreated sewage.",
			},
			{
				ID:     "q3",
				Type:   domain.QuestionDragMatch,
				Prompt: "Match these items to the correct recycling bins:",
				Hint:   "Help sort waste properly by dragging items to their correct recycling bins.",
				Items: []domain.DragItem{
					{ID: "item1", Text: "Plastic Bottle"},
					{ID: "item2", Text: "Banana Peel"},
					{ID: "item3", Text: "Newspaper"},
					{ID: "item4", Text: "Glass Jar"},
				},
				Zones: []domain.DropZone{
					{ID: "plastic", Label: "Plastic Recycling"},
					{ID: "organic", Label: "Compost Bin"},
					{ID: "paper", Label: "Paper Recycling"},
					{ID: "glass", Label: "Glass Recycling"},
				},
				CorrectMatches: map[string]string{
					"plastic": "item1",
					"organic": "item2",
					"paper":   "item3",
					"glass":   "item4",
				},
				Points:      200,
				Explanation: "Proper sorting helps recycling facilities process materials efficiently and reduces waste!",
			},
			{
				ID:     "q4",
				Type:   domain.QuestionSingleChoice,
				Prompt: "Why is Punjab's groundwater level dropping every year?",
				Hint:   "Think about how farmers get water for their crops!",
				Media:  "https://images.unsplash.com/photo-1625246333195-78d9c38ad449?w=500&h=300&fit=crop",
				Options: []domain.Option{
					{ID: "a", Text: "Too much rain washing away soil"},
					{ID: "b", Text: "Excessive tube-well pumping for rice and wheat farming"},
					{ID: "c", Text: "Climate change making it too hot"},
					{ID: "d", Text: "People wasting water at home"},
				},
				CorrectChoice: "b",
				Points:        100,
				Explanation:   "Tube-well pumping for water-hungry rice drops the water table 1-2 feet every year.",
			},
			{
				ID:     "q5",
				Type:   domain.QuestionSingleChoice,
				Prompt: "Which transportation method produces the least pollution?",
				Hint:   "Think about eco-friendly ways to get around!",
				Options: []domain.Option{
					{ID: "a", Text: "Riding a bicycle"},
					{ID: "b", Text: "Driving a car alone"},
					{ID: "c", Text: "Flying in an airplane"},
					{ID: "d", Text: "Riding a motorcycle"},
				},
				CorrectChoice: "a",
				Points:        100,
				Explanation:   "Bicycles produce zero emissions and are great exercise too!",
			},
		},
	}
}

// Lessons returns the starter lesson library.
func Lessons() []domain.Lesson {
	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	return []domain.Lesson{
		{
			ID:            "lesson-1",
			Title:         "Understanding Punjab's Air Quality Crisis",
			Description:   "Learn how stubble burning and winter weather trap pollution over Punjab.",
			Category:      "air-pollution",
			Difficulty:    "beginner",
			Status:        domain.LessonPublished,
			LastModified:  at("2025-01-10T10:30:00Z"),
			EstimatedTime: 15,
			Tags:          []string{"punjab", "air-pollution", "stubble-burning", "health"},
			Prerequisites: []string{},
		},
		{
			ID:            "lesson-2",
			Title:         "Punjab's Groundwater Emergency: Why Wells Are Going Dry",
			Description:   "Why tube-well irrigation for rice is draining Punjab's aquifers.",
			Category:      "water-crisis",
			Difficulty:    "intermediate",
			Status:        domain.LessonPublished,
			LastModified:  at("2025-01-09T14:20:00Z"),
			EstimatedTime: 20,
			Tags:          []string{"punjab", "groundwater", "agriculture", "rice-farming"},
			Prerequisites: []string{},
		},
		{
			ID:            "lesson-3",
			Title:         "Punjab's Rivers: Sutlej, Beas, and Ravi Under Threat",
			Description:   "Explore the pollution crisis in Punjab's major rivers and learn about industrial waste, sewage, and agricultural runoff affecting water quality.",
			Category:      "water-pollution",
			Difficulty:    "intermediate",
			Status:        domain.LessonDraft,
			LastModified:  at("2025-01-08T16:45:00Z"),
			EstimatedTime: 25,
			Tags:          []string{"punjab-rivers", "sutlej", "beas", "ravi", "water-pollution"},
			Prerequisites: []string{"lesson-2"},
		},
		{
			ID:            "lesson-4",
			Title:         "Young Environmental Heroes: How Teens Can Save Punjab",
			Description:   "Practical actions teenagers can take in their families and schools.",
			Category:      "youth-action",
			Difficulty:    "beginner",
			Status:        domain.LessonPublished,
			LastModified:  at("2025-01-07T11:15:00Z"),
			EstimatedTime: 18,
			Tags:          []string{"youth-activism", "teen-environment", "punjab-solutions"},
			Prerequisites: []string{},
		},
		{
			ID:            "lesson-5",
			Title:         "Punjab's Farming Dilemma: Green Revolution to Environmental Challenge",
			Description:   "How the Green Revolution changed Punjab's soil, water and biodiversity.",
			Category:      "agriculture",
			Difficulty:    "advanced",
			Status:        domain.LessonArchived,
			LastModified:  at("2025-01-06T09:30:00Z"),
			EstimatedTime: 30,
			Tags:          []string{"punjab-agriculture", "green-revolution", "sustainable-farming"},
			Prerequisites: []string{"lesson-2"},
		},
	}
}

// Challenges returns the daily challenge catalog.
func Challenges() []domain.Challenge {
	return []domain.Challenge{
		{
			ID:          "today-1",
			Title:       "Punjab Clean Air Champion",
			Description: "Help your family find alternatives to burning waste.",
			Difficulty:  "easy",
			Points:      150,
			BonusReward: "Air Quality Hero Badge",
			Type:        "photo",
			Status:      "available",
			Steps: []domain.ChallengeStep{
				{Title: "Find Burning Alternatives", Description: "Look for ways your family can avoid burning leaves, trash, or crop waste", Type: "action", Required: true, Points: 25},
				{Title: "Create a Compost Pile", Description: "Help make a compost area for organic waste instead of burning", Type: "action", Required: true, Points: 50},
				{Title: "Document Clean Actions", Description: "Take photos of your pollution-free waste management", Type: "photo", Required: true, MaxPhotos: 3, Points: 50},
				{Title: "Share Your Impact", Description: "How can your actions inspire other Punjab families?", Type: "reflection", Placeholder: "Share how your family can help reduce Punjab's air pollution...", Points: 25},
			},
		},
		{
			ID:          "today-2",
			Title:       "Punjab Groundwater Detective",
			Description: "Audit your household water use and make a family promise.",
			Difficulty:  "medium",
			Points:      200,
			BonusReward: "Water Conservation Expert Certificate",
			Type:        "family",
			Status:      "available",
			Steps: []domain.ChallengeStep{
				{Title: "Water Usage Audit", Type: "action", Required: true, Points: 40},
				{Title: "Find Water Waste", Type: "photo", Required: true, MaxPhotos: 5, Points: 60},
				{Title: "Calculate Daily Usage", Type: "action", Required: true, Points: 40},
				{Title: "Make Water-Saving Changes", Type: "action", Required: true, Points: 40},
				{Title: "Family Water Promise", Type: "reflection", Points: 20},
			},
		},
		{
			ID:          "today-3",
			Title:       "Sutlej River Knowledge Challenge",
			Description: "Learn about Punjab's rivers and share what you found.",
			Difficulty:  "easy",
			Points:      100,
			Type:        "knowledge",
			Status:      "available",
			Steps: []domain.ChallengeStep{
				{Title: "Take the Punjab Rivers Quiz", Description: "Answer 10 questions about Sutlej, Beas, and Ravi rivers", Type: "action", Required: true, Points: 60},
				{Title: "Learn River Facts", Description: "Discover amazing facts about Punjab's water systems", Type: "action", Required: true, Points: 30},
				{Title: "Share Your River Knowledge", Type: "reflection", Points: 10},
			},
		},
		{
			ID:          "completed-1",
			Title:       "Punjab Tree Planting Hero",
			Description: "Plant a native tree with your family.",
			Difficulty:  "easy",
			Points:      120,
			Type:        "action",
			Status:      "completed",
		},
		{
			ID:          "upcoming-1",
			Title:       "Punjab Plastic-Free Shopping Mission",
			Description: "Go shopping with cloth bags and no single-use plastic.",
			Difficulty:  "medium",
			Points:      180,
			Type:        "family",
			Status:      "upcoming",
		},
	}
}

// Flashcards returns the revision deck.
func Flashcards() []domain.Flashcard {
	return []domain.Flashcard{
		{ID: "card-1", CardNumber: 1, Topic: "Punjab Air Pollution", Question: "Why does Punjab face severe air pollution during October-November every year?", Answer: "Stubble burning by farmers after the rice harvest, combined with winter weather that traps pollutants near the ground.", Difficulty: "medium", ReviewFrequency: "new"},
		{ID: "card-2", CardNumber: 2, Topic: "Punjab Water Crisis", Question: "Name three major rivers of Punjab and explain why groundwater is decreasing.", Answer: "Sutlej, Beas and Ravi. Groundwater falls because tube-wells pump water for rice, which needs 3-5 times more water than wheat.", Difficulty: "easy", ReviewFrequency: "review"},
		{ID: "card-3", CardNumber: 3, Topic: "Punjab Industrial Pollution", Question: "How do industries in Ludhiana and other Punjab cities harm the environment?", Answer: "They release untreated chemicals into rivers, emit toxic gases, and produce solid waste that contaminates soil and groundwater.", Difficulty: "hard", ReviewFrequency: "new"},
		{ID: "card-4", CardNumber: 4, Topic: "Punjab Biodiversity", Question: "Which animals and birds are commonly found in Punjab, and why do they need protection?", Answer: "Peacocks, blackbucks, spotted deer and migratory birds, threatened by habitat loss, pollution and pesticides.", Difficulty: "easy", ReviewFrequency: "mastered"},
		{ID: "card-5", CardNumber: 5, Topic: "Punjab Agriculture & Environment", Question: "How does modern farming in Punjab affect soil and water quality?", Answer: "Excess pesticides and fertilizers contaminate groundwater, reduce soil fertility, and harm earthworms and beneficial insects.", Difficulty: "medium", ReviewFrequency: "review"},
		{ID: "card-6", CardNumber: 6, Topic: "Punjab Environmental Solutions", Question: "What can young people in Punjab do to help solve environmental problems?", Answer: "Plant native trees, promote organic farming, educate families about stubble-burning alternatives, cycle, and organise cleanliness drives.", Difficulty: "easy", ReviewFrequency: "new"},
	}
}
