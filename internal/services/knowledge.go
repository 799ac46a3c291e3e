package services

// KnowledgeEntry is one passage the chatbot can ground an answer in.
type KnowledgeEntry struct {
	ID       string
	Content  string
	Source   string
	Category string
	Keywords []string
}

var ayurvedicKnowledge = []KnowledgeEntry{
	{
		ID:       "vata-dosha-1",
		Content:  "Vata dosha governs movement in the body, including blood circulation, breathing, blinking, and heartbeat. It is composed of air and space elements. Characteristics include dryness, coldness, lightness, roughness, and irregularity. When balanced, Vata promotes creativity, flexibility, and vitality. Imbalance often manifests as anxiety, insomnia, dry skin, constipation, joint pain, and irregular digestion. Balancing Vata involves warmth, routine, grounding activities, oil massages, and nourishing foods like cooked grains, warm milk, and ghee.",
		Source:   "Classical Ayurveda",
		Category: "Doshas",
		Keywords: []string{"vata", "movement", "air", "space", "anxiety", "dryness"},
	},
	{
		ID:       "pitta-dosha-1",
		Content:  "Pitta dosha controls digestion, metabolism, and energy production. It is composed of fire and water elements. Its qualities are hot, sharp, light, oily, and penetrating. Pitta individuals often have strong digestion, good intellect, and natural leadership qualities but can be prone to anger, criticism, and perfectionism when imbalanced. Physical symptoms of Pitta imbalance include inflammation, heartburn, acid reflux, skin rashes, excessive sweating, and loose stools. Cooling foods, moderation, avoiding excess heat and spicy foods help balance Pitta.",
		Source:   "Classical Ayurveda",
		Category: "Doshas",
		Keywords: []string{"pitta", "fire", "digestion", "metabolism", "anger", "heat"},
	},
	{
		ID:       "kapha-dosha-1",
		Content:  "Kapha dosha provides structure, lubrication, and stability to the body. It is composed of earth and water elements. It is characterized by heaviness, coldness, slowness, oiliness, and stability. Balanced Kapha brings strength, immunity, calmness, and compassion. Imbalanced Kapha can lead to lethargy, weight gain, congestion, excessive sleep, attachment, and depression. Stimulation, regular exercise, warmth, light and spicy foods, and avoiding overeating are key to balancing Kapha dosha.",
		Source:   "Classical Ayurveda",
		Category: "Doshas",
		Keywords: []string{"kapha", "earth", "water", "structure", "lethargy", "weight"},
	},
	{
		ID:       "abhyanga-treatment-1",
		Content:  "Abhyanga is a traditional Ayurvedic oil massage therapy involving warm, medicated oils applied to the entire body in specific rhythmic strokes. This treatment nourishes the skin, improves circulation, calms the nervous system, and helps eliminate toxins. Benefits include stress reduction, improved sleep, joint flexibility, and enhanced immunity. Pre-treatment preparation involves light meals and proper hydration. Post-treatment care includes rest, warm bath, and avoiding cold environments.",
		Source:   "Panchakarma Texts",
		Category: "Treatments",
		Keywords: []string{"abhyanga", "massage", "oil", "circulation", "relaxation"},
	},
	{
		ID:       "panchakarma-1",
		Content:  "Panchakarma is Ayurveda's premier detoxification and rejuvenation therapy consisting of five main procedures: Vamana (therapeutic vomiting), Virechana (purgation), Basti (medicated enemas), Nasya (nasal administration), and Raktamokshana (bloodletting). These treatments systematically eliminate accumulated toxins (ama) and restore doshic balance. The therapy includes three phases: Purva Karma (preparation), Pradhan Karma (main treatment), and Paschat Karma (post-treatment care).",
		Source:   "Classical Panchakarma",
		Category: "Treatments",
		Keywords: []string{"panchakarma", "detox", "purification", "toxins", "cleansing"},
	},
	{
		ID:       "ayurvedic-diet-1",
		Content:  "Ayurvedic nutrition emphasizes eating according to your dosha, season, and digestive fire (agni). Six tastes (sweet, sour, salty, pungent, bitter, astringent) should be included in each meal for balance. Eat your largest meal at midday when digestive fire is strongest. Foods should be fresh, warm, and properly combined. Avoid incompatible food combinations like milk with citrus, honey when heated, or fruits with meals. Mindful eating in a peaceful environment enhances digestion and absorption.",
		Source:   "Ayurvedic Nutrition",
		Category: "Diet",
		Keywords: []string{"diet", "nutrition", "agni", "digestion", "tastes", "food"},
	},
}
