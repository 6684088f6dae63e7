package seed

import (
	"time"

	"github.com/noah-isme/barber-billing/internal/catalog"
)

// Services is the shop menu. Prices are in paise.
func Services() []catalog.Service {
	return []catalog.Service{
		{ID: "1", Name: "Hair Cut", Price: 15000, Category: "Hair"},
		{ID: "2", Name: "Beard Trim", Price: 8000, Category: "Beard"},
		{ID: "3", Name: "Clean Shave", Price: 10000, Category: "Beard"},
		{ID: "4", Name: "Facial (Basic)", Price: 20000, Category: "Facial"},
		{ID: "5", Name: "Facial (Premium)", Price: 35000, Category: "Facial"},
		{ID: "6", Name: "Hair Wash", Price: 5000, Category: "Hair"},
		{ID: "7", Name: "Nail Cutting", Price: 3000, Category: "Nails"},
		{ID: "8", Name: "Eyebrow Trimming", Price: 4000, Category: "Grooming"},
		{ID: "9", Name: "Head Massage", Price: 12000, Category: "Massage"},
		{ID: "10", Name: "Mustache Styling", Price: 6000, Category: "Beard"},
	}
}

// Barbers is the shop staff.
func Barbers() []catalog.Barber {
	return []catalog.Barber{
		{ID: "1", Name: "Rajesh Kumar", Experience: 8, Specialties: []string{"Hair Cut", "Beard Trim"}},
		{ID: "2", Name: "Amit Singh", Experience: 5, Specialties: []string{"Facial", "Clean Shave"}},
		{ID: "3", Name: "Suresh Patel", Experience: 12, Specialties: []string{"Hair Cut", "Mustache Styling"}},
		{ID: "4", Name: "Deepak Sharma", Experience: 6, Specialties: []string{"Beard Trim", "Head Massage"}},
		{ID: "5", Name: "Vikram Gupta", Experience: 4, Specialties: []string{"Facial", "Eyebrow Trimming"}},
	}
}

// Customers lists the regulars used to generate demo bills.
func Customers() []catalog.Customer {
	return []catalog.Customer{
		{
			ID:                   "1",
			Name:                 "Arjun Mehta",
			Phone:                "9876543210",
			HasMembership:        true,
			MembershipStartDate:  day(2024, time.January, 15),
			MembershipExpiryDate: day(2025, time.January, 15),
		},
		{ID: "2", Name: "Rohit Sharma", Phone: "9123456789"},
		{
			ID:                   "3",
			Name:                 "Kiran Desai",
			Phone:                "9988776655",
			HasMembership:        true,
			MembershipStartDate:  day(2024, time.March, 10),
			MembershipExpiryDate: day(2025, time.March, 10),
		},
	}
}

// Catalog bundles the reference lists.
func Catalog() *catalog.Catalog {
	return catalog.MustNew(Services(), Barbers(), Customers())
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
