package models

// DemoProjects is the catalog a fresh install can be seeded with.
func DemoProjects() []ProjectDraft {
	return []ProjectDraft{
		{
			Name:             "AI Agent Dashboard",
			ShortDescription: "A platform to manage and monitor intelligent AI agents.",
			LongDescription:  "This project is a full-featured dashboard built with React, TypeScript, and Tailwind CSS. It provides real-time monitoring, filtering, and management capabilities for a fleet of AI agents. The data is persisted using local storage to simulate a backend.",
			ProjectURL:       "https://github.com/example/ai-dashboard",
			Technologies:     []string{"React", "TypeScript", "TailwindCSS", "Vite"},
			Complexity:       9.9,
			ProjectDate:      MustParseDate("2024-03-01"),
			IsActive:         true,
			Avatar:           AvatarRobot1,
			AvatarColor:      ColorTeal,
		},
		{
			Name:             "E-commerce Platform",
			ShortDescription: "A scalable online store with a custom CMS and payment integration.",
			LongDescription:  "A complete e-commerce solution using the MERN stack. Features include product management, user authentication with JWT, a shopping cart, and Stripe for payment processing. The front-end is a responsive SPA built with React.",
			ProjectURL:       "https://github.com/example/ecommerce",
			Technologies:     []string{"React", "Node.js", "Express", "MongoDB", "Stripe"},
			Complexity:       8.8,
			ProjectDate:      MustParseDate("2024-02-10"),
			IsActive:         true,
			Avatar:           AvatarRobot2,
			AvatarColor:      ColorYellow,
		},
		{
			Name:             "Python Data Scraper",
			ShortDescription: "A web scraping tool for collecting and processing financial data.",
			LongDescription:  "Developed a Python-based web scraper using BeautifulSoup and Scrapy to gather data from multiple financial news websites. The data is then cleaned, processed with Pandas, and stored in a PostgreSQL database for analysis.",
			ProjectURL:       "https://github.com/example/data-scraper",
			Technologies:     []string{"Python", "Scrapy", "BeautifulSoup", "Pandas"},
			Complexity:       7.6,
			ProjectDate:      MustParseDate("2024-01-05"),
			IsActive:         false,
			Avatar:           AvatarRobot3,
			AvatarColor:      ColorLightYellow,
		},
	}
}
