package domain

var seed = []Resource{
	{
		Title:  "Guide de co-développement Aire ouverte",
		Source: "Centre RBC d'expertise universitaire",
		Competencies: []string{
			"Collaborer efficacement au sein d’une équipe interprofessionnelle",
			"S’adapter avec agilité aux défis complexes",
		},
		Theme:  "Travail interdisciplinaire",
		Type:   TypeGuide,
		Format: "PDF - 15 pages",
		Link:   "https://exemple.com/guide-codev",
	},
	{
		Title:        "Capsule vidéo : Posture d'écoute active",
		Source:       "CIUSSS de l'Estrie",
		Competencies: []string{"Agir selon une approche centrée sur les jeunes"},
		Theme:        "Relation avec les jeunes",
		Type:         TypeVideo,
		Format:       "Vidéo - 8 min",
		Link:         "https://exemple.com/capsule-ecoute",
	},
	{
		Title:  "Formation : Introduction à l’approche orientée vers les solutions",
		Source: "Université de Sherbrooke",
		Competencies: []string{
			"Intervenir de manière adaptée en contexte de services ponctuels ou court terme",
			"S’adapter avec agilité aux défis complexes",
		},
		Theme:  "Pratiques d’intervention",
		Type:   TypeTraining,
		Format: "Module en ligne - 45 min",
		Link:   "https://exemple.com/formation-aos",
	},
}

var competencies = []string{
	"Agir selon une approche centrée sur les jeunes",
	"S’adapter avec agilité aux défis complexes",
	"Accueillir et analyser les demandes de services à Aire ouverte",
	"Intervenir de manière adaptée en contexte de services ponctuels ou court terme",
	"Accompagner vers des services et ressources dans la communauté et le RSSS",
	"Déployer des actions de démarchage (outreach) pour aller vers les jeunes",
	"Établir et maintenir des partenariats intersectoriels et intraétablissement",
	"Collaborer efficacement au sein d’une équipe interprofessionnelle",
	"Encourager et soutenir la participation des jeunes et des proches",
	"Incarner les valeurs et les principes éthiques d’Aire ouverte dans sa pratique",
	"Adopter une posture réflexive dans sa pratique",
	"S’engager dans une démarche de développement professionnel continu",
}

// Seed returns a fresh copy of the built-in catalog used when no persisted
// state is available.
func Seed() []Resource {
	out := make([]Resource, len(seed))
	for i, r := range seed {
		out[i] = r.Clone()
	}
	return out
}

// Competencies returns the fixed competency vocabulary offered to the
// competency selector. It is not derived from catalog data.
func Competencies() []string {
	out := make([]string, len(competencies))
	copy(out, competencies)
	return out
}
