package models

// SeedCategories is the reference category list.
var SeedCategories = []Category{
	{ID: "cat1", Name: "Creators", Position: 1},
	{ID: "cat2", Name: "Athletes", Position: 2},
	{ID: "cat3", Name: "Organizers", Position: 3},
}

// SeedCandidates is the initial candidate list with zero tallies.
var SeedCandidates = []Candidate{
	{ID: "cat1-a", Name: "سارة حيون", Image: "/participants/1.jpg", CategoryID: "cat1", IsActive: true},
	{ID: "cat1-b", Name: "نبيل الحموتي", Image: "/participants/2.jpg", CategoryID: "cat1", IsActive: true},
	{ID: "cat1-c", Name: "فوزية كريشو", Image: "/participants/3.jpg", CategoryID: "cat1", IsActive: true},
	{ID: "cat2-a", Name: "منعم العبوضي", Image: "/participants/4.jpg", CategoryID: "cat2", IsActive: true},
	{ID: "cat2-b", Name: "فهيم دراز & عبد الوهاب الخميري", Image: "/participants/5.jpg", CategoryID: "cat2", IsActive: true},
	{ID: "cat2-c", Name: "محمد بنعمر", Image: "/participants/6.jpg", CategoryID: "cat2", IsActive: true},
	{ID: "cat2-d", Name: "حسين ترك", Image: "/participants/7.jpg", CategoryID: "cat2", IsActive: true},
	{ID: "cat2-e", Name: "محمد قرقاش", Image: "/participants/8.jpg", CategoryID: "cat2", IsActive: true},
	{ID: "cat3-a", Name: "مريم بوعسيلة", Image: "/participants/9.jpg", CategoryID: "cat3", IsActive: true},
	{ID: "cat3-b", Name: "شباب غيث", Image: "/participants/10.jpg", CategoryID: "cat3", IsActive: true},
	{ID: "cat3-c", Name: "أشرف بلحيان", Image: "/participants/11.jpg", CategoryID: "cat3", IsActive: true},
	{ID: "cat3-d", Name: "وليد الحدادي", Image: "/participants/12.jpg", CategoryID: "cat3", IsActive: true},
}
